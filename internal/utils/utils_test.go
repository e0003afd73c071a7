package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/wt-schema-repair/internal/ddl"
	"github.com/vitebski/wt-schema-repair/internal/repair"
)

func TestSetupLogging(t *testing.T) {
	// Test with default log level
	logger := SetupLogging("")
	if logger == nil {
		t.Error("Expected logger to be created, got nil")
	}

	// Test with specific log level
	logger = SetupLogging("debug")
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Expected log level to be debug, got %s", logger.Level)
	}

	logger = SetupLogging("warn")
	if logger.Level != logrus.WarnLevel {
		t.Errorf("Expected log level to be warn, got %s", logger.Level)
	}

	logger = SetupLogging("error")
	if logger.Level != logrus.ErrorLevel {
		t.Errorf("Expected log level to be error, got %s", logger.Level)
	}

	// Test with invalid log level (should default to info)
	logger = SetupLogging("invalid")
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected log level to be info for invalid input, got %s", logger.Level)
	}

	// The environment is used when no level is given
	os.Setenv("MYSQL_LOG_LEVEL", "debug")
	defer os.Unsetenv("MYSQL_LOG_LEVEL")
	logger = SetupLogging("")
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Expected log level from MYSQL_LOG_LEVEL to be debug, got %s", logger.Level)
	}
}

func TestLoadEnvironmentVariables(t *testing.T) {
	logger := createTestLogger()
	for _, key := range []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_DATABASE"} {
		os.Unsetenv(key)
	}
	defer func() {
		for _, key := range []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_DATABASE"} {
			os.Unsetenv(key)
		}
	}()

	envFile := filepath.Join(t.TempDir(), ".env")
	if LoadEnvironmentVariables(envFile, logger) {
		t.Error("Expected missing settings to be reported without an env file")
	}

	content := "MYSQL_HOST=db\nMYSQL_USER=webtrees\nMYSQL_DATABASE=genealogy\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !LoadEnvironmentVariables(envFile, logger) {
		t.Error("Expected settings to be complete after loading the env file")
	}
	if os.Getenv("MYSQL_DATABASE") != "genealogy" {
		t.Errorf("Expected MYSQL_DATABASE to be 'genealogy', got '%s'", os.Getenv("MYSQL_DATABASE"))
	}
}

func TestGetEnvPrefix(t *testing.T) {
	os.Unsetenv("MYSQL_TABLE_PREFIX")
	if prefix := GetEnvPrefix("", "wt_"); prefix != "wt_" {
		t.Errorf("Expected default prefix 'wt_', got '%s'", prefix)
	}

	os.Setenv("MYSQL_TABLE_PREFIX", "genealogy_")
	defer os.Unsetenv("MYSQL_TABLE_PREFIX")
	if prefix := GetEnvPrefix("", "wt_"); prefix != "genealogy_" {
		t.Errorf("Expected prefix from environment 'genealogy_', got '%s'", prefix)
	}
	if prefix := GetEnvPrefix("flag_", "wt_"); prefix != "flag_" {
		t.Errorf("Expected prefix from flag 'flag_', got '%s'", prefix)
	}

	os.Setenv("MYSQL_TABLE_PREFIX", "")
	if prefix := GetEnvPrefix("", "wt_"); prefix != "" {
		t.Errorf("Expected empty prefix, got '%s'", prefix)
	}
}

func TestValidateConnectionParams(t *testing.T) {
	logger := createTestLogger()

	// Test with valid parameters
	valid := ValidateConnectionParams("localhost", "user", "password", "database", "3306", logger)
	if !valid {
		t.Error("Expected validation to pass with valid parameters")
	}

	// Test with missing host
	valid = ValidateConnectionParams("", "user", "password", "database", "3306", logger)
	if valid {
		t.Error("Expected validation to fail with missing host")
	}

	// Test with missing user
	valid = ValidateConnectionParams("localhost", "", "password", "database", "3306", logger)
	if valid {
		t.Error("Expected validation to fail with missing user")
	}

	// Test with missing database
	valid = ValidateConnectionParams("localhost", "user", "password", "", "3306", logger)
	if valid {
		t.Error("Expected validation to fail with missing database")
	}

	// Test with invalid port
	valid = ValidateConnectionParams("localhost", "user", "password", "database", "not-a-port", logger)
	if valid {
		t.Error("Expected validation to fail with invalid port")
	}

	// Empty password is allowed
	valid = ValidateConnectionParams("localhost", "user", "", "database", "3306", logger)
	if !valid {
		t.Error("Expected validation to pass with empty password")
	}
}

func TestConsoleReporter(t *testing.T) {
	var logs, out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	reporter := &ConsoleReporter{Logger: logger, Out: &out}
	reporter.Statement(2, 7, ddl.DropTableStatement("wt_obsolete"))
	if !strings.Contains(logs.String(), "[2/7] DROP TABLE `wt_obsolete`") {
		t.Errorf("Expected statement to be logged with its position, got %q", logs.String())
	}

	reporter.Summary(repair.Result{
		State:   repair.StateFailed,
		Applied: []ddl.Statement{ddl.DropTableStatement("wt_a")},
		Total:   3,
		Err:     errors.New("statement 2 of 3 failed"),
	})
	summary := out.String()
	for _, want := range []string{"Statements executed: 1/3", "failed", "statement 2 of 3 failed", "not rolled back"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Expected summary to contain %q, got %q", want, summary)
		}
	}
}

func TestPrintPlan(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	plan := repair.Plan{
		Phases: repair.Phases{
			DropForeignKeys: []ddl.Statement{ddl.DropForeignKeyStatement("wt_link", "wt_link_fk1")},
			Changes:         []ddl.Statement{ddl.DropTableStatement("wt_obsolete")},
			AddForeignKeys:  []ddl.Statement{{Kind: ddl.AddForeignKey, SQL: "ALTER TABLE `wt_link` ADD CONSTRAINT ..."}},
		},
		Purges:         []ddl.Statement{{Kind: ddl.DeleteOrphans, SQL: "DELETE FROM `wt_link` WHERE ..."}},
		ObsoleteTables: []string{"wt_obsolete"},
	}

	PrintPlan(&out, plan)
	text := out.String()
	for _, want := range []string{"wt_obsolete", "[1/4] ALTER TABLE `wt_link` DROP FOREIGN KEY", "[3/4] DELETE FROM", "[4/4] ALTER TABLE `wt_link` ADD CONSTRAINT"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected plan to contain %q, got %q", want, text)
		}
	}

	out.Reset()
	PrintPlan(&out, repair.Plan{})
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("Expected an empty plan to report an up to date schema, got %q", out.String())
	}
}

// Helper function to create a test logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}
