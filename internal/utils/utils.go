package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/wt-schema-repair/internal/ddl"
	"github.com/vitebski/wt-schema-repair/internal/repair"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	// The flag wins over the environment
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("MYSQL_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from an .env file. It reports whether all
// connection settings are present afterwards.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warningf("Error loading %s file: %v", envFile, err)
		} else {
			logger.Infof("Loaded environment variables from %s", envFile)
		}
	} else {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		} else {
			logger.Debugf("No %s file found, using existing environment variables", envFile)
		}
	}

	var missingVars []string
	for _, v := range []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_DATABASE"} {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			name, value, ok := strings.Cut(env, "=")
			if !ok || !strings.HasPrefix(name, "MYSQL_") {
				continue
			}
			if name == "MYSQL_PASSWORD" {
				value = "********"
			}
			logger.Debugf("%s=%s", name, value)
		}
	}

	if len(missingVars) > 0 {
		logger.Debugf("Environment variables not set: %s", strings.Join(missingVars, ", "))
		return false
	}
	return true
}

// GetEnvPrefix returns the table prefix: the flag value, else MYSQL_TABLE_PREFIX, else defaultPrefix.
// An explicitly empty MYSQL_TABLE_PREFIX means no prefix.
func GetEnvPrefix(flagValue, defaultPrefix string) string {
	if flagValue != "" {
		return flagValue
	}
	if value, ok := os.LookupEnv("MYSQL_TABLE_PREFIX"); ok {
		return value
	}
	return defaultPrefix
}

// ValidateConnectionParams validates database connection parameters
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) bool {
	if host == "" {
		logger.Error("Database host is required")
		return false
	}

	if user == "" {
		logger.Error("Database user is required")
		return false
	}

	if password == "" { // Empty password is allowed
		logger.Warning("Database password is empty")
	}

	if database == "" {
		logger.Error("Database name is required")
		return false
	}

	if _, err := strconv.Atoi(port); err != nil {
		logger.Errorf("Invalid port number: %s", port)
		return false
	}

	return true
}

// ConsoleReporter logs each statement before it runs and prints a summary when the run ends
type ConsoleReporter struct {
	Logger *logrus.Logger
	Out    io.Writer
}

// NewConsoleReporter creates a reporter writing its summary to stdout
func NewConsoleReporter(logger *logrus.Logger) *ConsoleReporter {
	return &ConsoleReporter{Logger: logger, Out: os.Stdout}
}

func (r *ConsoleReporter) Statement(index, total int, statement ddl.Statement) {
	r.Logger.Infof("[%d/%d] %s", index, total, statement.SQL)
}

func (r *ConsoleReporter) Summary(result repair.Result) {
	PrintRepairSummary(r.Out, result)
}

var (
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// PrintPlan prints the statements a repair would run, grouped by phase
func PrintPlan(w io.Writer, plan repair.Plan) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "DATABASE REPAIR PLAN")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	if plan.Empty() {
		fmt.Fprintln(w, green("\nThe database schema is up to date"))
		fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
		return
	}

	if len(plan.ObsoleteTables) > 0 {
		fmt.Fprintf(w, "\nTables not part of the schema: %s\n", yellow(strings.Join(plan.ObsoleteTables, ", ")))
	}

	sections := []struct {
		title      string
		statements []ddl.Statement
	}{
		{"1. DROP FOREIGN KEYS", plan.Phases.DropForeignKeys},
		{"2. SCHEMA CHANGES", plan.Phases.Changes},
		{"3. DELETE ROWS WITH INVALID REFERENCES", plan.Purges},
		{"4. ADD FOREIGN KEYS", plan.Phases.AddForeignKeys},
	}

	n := 0
	total := len(plan.Statements())
	for _, section := range sections {
		fmt.Fprintf(w, "\n%s (%d)\n", section.title, len(section.statements))
		for _, statement := range section.statements {
			n++
			fmt.Fprintf(w, "   %s %s\n", cyan(fmt.Sprintf("[%d/%d]", n, total)), statement.SQL)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

// PrintRepairSummary prints the outcome of a repair run
func PrintRepairSummary(w io.Writer, result repair.Result) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "DATABASE REPAIR SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Statements executed: %d/%d\n", len(result.Applied), result.Total)
	fmt.Fprintf(w, "Rows with invalid references deleted: %d\n", result.RowsPurged)
	fmt.Fprintf(w, "Duration: %v\n", result.Duration.Round(time.Millisecond))

	if result.State == repair.StateDone {
		fmt.Fprintf(w, "Result: %s\n", green("success"))
	} else {
		fmt.Fprintf(w, "Result: %s\n", red("failed"))
		if result.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", result.Err)
		}
		if len(result.Applied) > 0 {
			fmt.Fprintln(w, "Applied statements were not rolled back. Run the repair again to apply the remaining changes.")
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
}
