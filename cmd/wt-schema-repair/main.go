package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/wt-schema-repair/internal/analyzer"
	"github.com/vitebski/wt-schema-repair/internal/connector"
	"github.com/vitebski/wt-schema-repair/internal/generator"
	"github.com/vitebski/wt-schema-repair/internal/repair"
	"github.com/vitebski/wt-schema-repair/internal/schema"
	"github.com/vitebski/wt-schema-repair/internal/utils"
	"github.com/vitebski/wt-schema-repair/internal/webtrees"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		host     string
		user     string
		password string
		database string
		port     string
		prefix   string
		envFile  string
		logLevel string

		dryRun             bool
		keepObsoleteTables bool
		assumeYes          bool

		format string
	)

	rootCmd := &cobra.Command{
		Use:   "wt-schema-repair",
		Short: "Repair the database schema of a webtrees installation",
		Long: `webtrees schema repair

Compares the tables of a webtrees database with the schema of the running
application version and applies the changes needed to bring them in line,
removing rows with invalid references before foreign keys are added.`,
	}

	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)
			utils.LoadEnvironmentVariables(envFile, logger)

			// Empty parameters fall back to the environment
			db := connector.NewDatabaseConnector(host, user, password, database, port, logger)
			if !utils.ValidateConnectionParams(db.Host, db.User, db.Password, db.Database, db.Port, logger) {
				os.Exit(1)
			}

			tablePrefix := utils.GetEnvPrefix(prefix, webtrees.DefaultPrefix)
			if tablePrefix == "" {
				logger.Warning("No table prefix set, every table in the database is compared with the webtrees schema")
			}
			target, err := webtrees.Schema(tablePrefix)
			if err != nil {
				logger.Errorf("Invalid target schema: %v", err)
				os.Exit(1)
			}

			if err := db.Connect(); err != nil {
				logger.Errorf("Failed to connect to database: %v", err)
				os.Exit(1)
			}
			defer db.Disconnect()

			if version, err := db.ServerVersion(); err == nil {
				logger.Infof("Server version: %s", version)
			}

			repairer := repair.NewRepairer(
				target,
				analyzer.NewSchemaAnalyzer(db, db.Database, tablePrefix, logger),
				generator.NewDDLGenerator(logger),
				db,
				utils.NewConsoleReporter(logger),
				repair.Options{
					SchemaVersion:      webtrees.SchemaVersion,
					KeepObsoleteTables: keepObsoleteTables,
					Prefix:             tablePrefix,
				},
				logger,
			)

			plan, err := repairer.Plan()
			if err != nil {
				logger.Errorf("Failed to plan the repair: %v", err)
				db.Disconnect()
				os.Exit(1)
			}
			utils.PrintPlan(os.Stdout, plan)

			if dryRun {
				logger.Info("Dry run, exiting without changing the database")
				return
			}
			if plan.Empty() {
				return
			}
			if !assumeYes && !confirm(len(plan.Statements()), logger) {
				logger.Info("Repair cancelled")
				return
			}

			logger.Info("Starting database repair...")
			if _, err := repairer.Repair(); err != nil {
				var statementError *repair.StatementError
				if errors.As(err, &statementError) {
					logger.Errorf("Statement %d of %d failed: %s", statementError.Index, statementError.Total, statementError.Statement.SQL)
				}
				logger.Errorf("Repair failed: %v", err)
				db.Disconnect()
				os.Exit(1)
			}
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema the repair brings the database to",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)

			target, err := webtrees.Schema(utils.GetEnvPrefix(prefix, webtrees.DefaultPrefix))
			if err != nil {
				logger.Errorf("Invalid target schema: %v", err)
				os.Exit(1)
			}

			if err := printSchema(target, format, logger); err != nil {
				logger.Errorf("Failed to print schema: %v", err)
				os.Exit(1)
			}
		},
	}

	// Define flags
	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "MySQL host (default: localhost)")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "MySQL user (default: root)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "MySQL password")
	rootCmd.PersistentFlags().StringVarP(&database, "database", "d", "", "MySQL database name")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "P", "", "MySQL port (default: 3306)")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "Table prefix (default: wt_)")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	repairCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the statements without executing them")
	repairCmd.Flags().BoolVar(&keepObsoleteTables, "keep-obsolete-tables", false, "Do not drop tables that are not part of the schema")
	repairCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	schemaCmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, sql)")

	rootCmd.AddCommand(repairCmd, schemaCmd)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func confirm(count int, logger *logrus.Logger) bool {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Apply %d statements to the database", count),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if !errors.Is(err, promptui.ErrAbort) {
			logger.Debugf("Prompt failed: %v", err)
		}
		return false
	}
	return true
}

func printSchema(target schema.Schema, format string, logger *logrus.Logger) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(target); err != nil {
			return err
		}
		return encoder.Close()
	case "sql":
		statements, err := generator.NewDDLGenerator(logger).Diff(schema.Schema{}, target)
		if err != nil {
			return err
		}
		for _, statement := range statements {
			fmt.Printf("%s;\n\n", statement.SQL)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}
