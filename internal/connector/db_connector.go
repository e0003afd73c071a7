package connector

import (
	"database/sql"
	"errors"
	"net"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// ErrNoDatabase is returned by Connect when no database name was configured
var ErrNoDatabase = errors.New("database name must be provided either as an argument or as MYSQL_DATABASE environment variable")

// DatabaseConnector holds the single live MySQL connection used by a repair run. It runs the
// introspection queries and is the execution sink for repair statements.
type DatabaseConnector struct {
	Host     string
	User     string
	Password string
	Database string
	Port     string
	DB       *sql.DB
	Logger   *logrus.Logger
}

// NewDatabaseConnector creates a new database connector. Empty parameters fall back to the
// MYSQL_* environment variables.
func NewDatabaseConnector(host, user, password, database, port string, logger *logrus.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Host:     valueOrEnv(host, "MYSQL_HOST", "localhost"),
		User:     valueOrEnv(user, "MYSQL_USER", "root"),
		Password: valueOrEnv(password, "MYSQL_PASSWORD", ""),
		Database: valueOrEnv(database, "MYSQL_DATABASE", ""),
		Port:     valueOrEnv(port, "MYSQL_PORT", "3306"),
		Logger:   logger,
	}
}

// DSN returns the go-sql-driver data source name for the connection parameters
func (dc *DatabaseConnector) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = dc.User
	cfg.Passwd = dc.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(dc.Host, dc.Port)
	cfg.DBName = dc.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Connect opens and pings the connection. A repair run needs exactly one, so the pool is capped.
func (dc *DatabaseConnector) Connect() error {
	if dc.Database == "" {
		return ErrNoDatabase
	}

	db, err := sql.Open("mysql", dc.DSN())
	if err != nil {
		dc.Logger.Errorf("Error connecting to MySQL database: %v", err)
		return err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		dc.Logger.Errorf("Error pinging MySQL database: %v", err)
		_ = db.Close()
		return err
	}

	dc.DB = db
	dc.Logger.Infof("Connected to MySQL database: %s", dc.Database)
	return nil
}

// Disconnect closes the database connection
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB == nil {
		return
	}
	if err := dc.DB.Close(); err != nil {
		dc.Logger.Errorf("Error closing database connection: %v", err)
		return
	}
	dc.Logger.Info("MySQL connection closed")
}

func (dc *DatabaseConnector) ensureConnected() error {
	if dc.DB != nil {
		return nil
	}
	return dc.Connect()
}

// ServerVersion returns the server's version string, e.g. 8.0.36 or 10.11.6-MariaDB
func (dc *DatabaseConnector) ServerVersion() (string, error) {
	if err := dc.ensureConnected(); err != nil {
		return "", err
	}
	var version string
	if err := dc.DB.QueryRow("SELECT VERSION()").Scan(&version); err != nil {
		dc.Logger.Errorf("Error reading server version: %v", err)
		return "", err
	}
	return version, nil
}

// ExecuteQuery runs a query and returns one map per row, keyed by column label. Byte slices are
// returned as strings.
func (dc *DatabaseConnector) ExecuteQuery(query string, params ...interface{}) ([]map[string]interface{}, error) {
	if err := dc.ensureConnected(); err != nil {
		return nil, err
	}

	rows, err := dc.DB.Query(query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		dc.Logger.Errorf("Error getting columns: %v", err)
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		row, err := scanRow(rows, columns)
		if err != nil {
			dc.Logger.Errorf("Error scanning row: %v", err)
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		dc.Logger.Errorf("Error iterating rows: %v", err)
		return nil, err
	}

	return results, nil
}

func scanRow(rows *sql.Rows, columns []string) (map[string]interface{}, error) {
	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return nil, err
	}

	row := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		if b, ok := values[i].([]byte); ok {
			row[column] = string(b)
		} else {
			row[column] = values[i]
		}
	}
	return row, nil
}

// ExecuteStatement executes one statement and returns the number of affected rows. The driver's
// error is returned unchanged so the engine's message reaches the operator.
func (dc *DatabaseConnector) ExecuteStatement(query string, params ...interface{}) (int64, error) {
	if err := dc.ensureConnected(); err != nil {
		return 0, err
	}

	started := time.Now()
	result, err := dc.DB.Exec(query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		dc.Logger.Errorf("Error getting affected rows: %v", err)
		return 0, err
	}
	dc.Logger.Debugf("Statement affected %d rows in %v", affected, time.Since(started))

	return affected, nil
}

func valueOrEnv(value, key, defaultValue string) string {
	if value != "" {
		return value
	}
	if env, exists := os.LookupEnv(key); exists {
		return env
	}
	return defaultValue
}
