package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/wt-schema-repair/internal/schema"
	"github.com/vitebski/wt-schema-repair/pkg/models"
)

// Querier runs a query and returns its rows keyed by column label
type Querier interface {
	ExecuteQuery(query string, params ...interface{}) ([]map[string]interface{}, error)
}

// SchemaAnalyzer reads the live schema of one database from information_schema. Only tables whose
// name starts with Prefix are considered.
type SchemaAnalyzer struct {
	DB             Querier
	Database       string
	Prefix         string
	Tables         []string
	TableColumns   map[string][]models.Column
	TableIndexes   map[string][]models.IndexColumn
	ForeignKeys    map[string][]models.ForeignKeyColumn
	CircularGroups [][]string
	Logger         *logrus.Logger
}

// NewSchemaAnalyzer creates a new schema analyzer
func NewSchemaAnalyzer(db Querier, database, prefix string, logger *logrus.Logger) *SchemaAnalyzer {
	return &SchemaAnalyzer{
		DB:           db,
		Database:     database,
		Prefix:       prefix,
		TableColumns: make(map[string][]models.Column),
		TableIndexes: make(map[string][]models.IndexColumn),
		ForeignKeys:  make(map[string][]models.ForeignKeyColumn),
		Logger:       logger,
	}
}

const (
	tablesQuery = `
		SELECT table_name AS table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	columnsQuery = `
		SELECT
			table_name AS table_name,
			column_name AS column_name,
			column_type AS column_type,
			is_nullable AS is_nullable,
			column_default AS column_default,
			extra AS extra
		FROM information_schema.columns
		WHERE table_schema = ?
		ORDER BY table_name, ordinal_position
	`
	indexesQuery = `
		SELECT
			table_name AS table_name,
			index_name AS index_name,
			column_name AS column_name,
			non_unique AS non_unique,
			seq_in_index AS seq_in_index
		FROM information_schema.statistics
		WHERE table_schema = ?
		ORDER BY table_name, index_name, seq_in_index
	`
	foreignKeysQuery = `
		SELECT
			k.table_name AS table_name,
			k.constraint_name AS constraint_name,
			k.column_name AS column_name,
			k.referenced_table_name AS referenced_table_name,
			k.referenced_column_name AS referenced_column_name,
			r.delete_rule AS delete_rule,
			r.update_rule AS update_rule
		FROM information_schema.key_column_usage k
		JOIN information_schema.referential_constraints r
		ON r.constraint_schema = k.constraint_schema
		AND r.constraint_name = k.constraint_name
		AND r.table_name = k.table_name
		WHERE k.table_schema = ?
		AND k.referenced_table_name IS NOT NULL
		ORDER BY k.table_name, k.constraint_name, k.ordinal_position
	`
)

// AnalyzeSchema loads tables, columns, indexes and foreign keys
func (sa *SchemaAnalyzer) AnalyzeSchema() error {
	tablesResult, err := sa.DB.ExecuteQuery(tablesQuery, sa.Database)
	if err != nil {
		sa.Logger.Errorf("Error getting tables: %v", err)
		return err
	}

	known := make(map[string]bool)
	sa.Tables = nil
	sa.TableColumns = make(map[string][]models.Column)
	sa.TableIndexes = make(map[string][]models.IndexColumn)
	sa.ForeignKeys = make(map[string][]models.ForeignKeyColumn)
	for _, row := range tablesResult {
		table := asString(row["table_name"])
		if !sa.owns(table) {
			sa.Logger.Debugf("Ignoring table %s without prefix %q", table, sa.Prefix)
			continue
		}
		sa.Tables = append(sa.Tables, table)
		known[table] = true
	}

	columnsResult, err := sa.DB.ExecuteQuery(columnsQuery, sa.Database)
	if err != nil {
		sa.Logger.Errorf("Error getting columns: %v", err)
		return err
	}
	for _, row := range columnsResult {
		column := models.Column{
			Table:      asString(row["table_name"]),
			Name:       asString(row["column_name"]),
			ColumnType: asString(row["column_type"]),
			IsNullable: strings.EqualFold(asString(row["is_nullable"]), "YES"),
			Extra:      asString(row["extra"]),
		}
		if !known[column.Table] {
			continue
		}
		if row["column_default"] != nil {
			value := asString(row["column_default"])
			column.ColumnDefault = &value
		}
		sa.TableColumns[column.Table] = append(sa.TableColumns[column.Table], column)
	}

	indexesResult, err := sa.DB.ExecuteQuery(indexesQuery, sa.Database)
	if err != nil {
		sa.Logger.Errorf("Error getting indexes: %v", err)
		return err
	}
	// Functional index parts have no column name; such indexes are left out of the model
	expressions := make(map[models.IndexColumn]bool)
	var indexRows []models.IndexColumn
	for _, row := range indexesResult {
		index := models.IndexColumn{
			Table:      asString(row["table_name"]),
			IndexName:  asString(row["index_name"]),
			ColumnName: asString(row["column_name"]),
			NonUnique:  asInt(row["non_unique"]) != 0,
			SeqInIndex: asInt(row["seq_in_index"]),
		}
		if !known[index.Table] {
			continue
		}
		if row["column_name"] == nil {
			key := models.IndexColumn{Table: index.Table, IndexName: index.IndexName}
			if !expressions[key] {
				sa.Logger.Warningf("Ignoring functional index %s on %s", index.IndexName, index.Table)
			}
			expressions[key] = true
			continue
		}
		indexRows = append(indexRows, index)
	}
	for _, index := range indexRows {
		if expressions[models.IndexColumn{Table: index.Table, IndexName: index.IndexName}] {
			continue
		}
		sa.TableIndexes[index.Table] = append(sa.TableIndexes[index.Table], index)
	}

	fkResult, err := sa.DB.ExecuteQuery(foreignKeysQuery, sa.Database)
	if err != nil {
		sa.Logger.Errorf("Error getting foreign keys: %v", err)
		return err
	}
	for _, row := range fkResult {
		fk := models.ForeignKeyColumn{
			Table:            asString(row["table_name"]),
			ConstraintName:   asString(row["constraint_name"]),
			Column:           asString(row["column_name"]),
			ReferencedTable:  asString(row["referenced_table_name"]),
			ReferencedColumn: asString(row["referenced_column_name"]),
			DeleteRule:       asString(row["delete_rule"]),
			UpdateRule:       asString(row["update_rule"]),
		}
		if !known[fk.Table] {
			continue
		}
		sa.ForeignKeys[fk.Table] = append(sa.ForeignKeys[fk.Table], fk)
	}

	sa.Logger.Debugf("Found %d tables with prefix %q in %s", len(sa.Tables), sa.Prefix, sa.Database)
	return nil
}

// Introspect analyzes the database and returns its schema with the live index and constraint names
func (sa *SchemaAnalyzer) Introspect() (schema.Schema, error) {
	if err := sa.AnalyzeSchema(); err != nil {
		return schema.Schema{}, err
	}
	return sa.BuildSchema()
}

// BuildSchema converts the rows loaded by AnalyzeSchema into a schema
func (sa *SchemaAnalyzer) BuildSchema() (schema.Schema, error) {
	builder := schema.NewBuilder("")
	tables := make([]schema.Table, 0, len(sa.Tables))

	for _, name := range sa.Tables {
		var elements []schema.Element
		for _, column := range sa.TableColumns[name] {
			elements = append(elements, buildColumn(column))
		}
		for _, index := range buildIndexes(sa.TableIndexes[name]) {
			elements = append(elements, index)
		}
		for _, fk := range buildForeignKeys(sa.ForeignKeys[name]) {
			elements = append(elements, fk)
		}

		table, err := builder.Table(name, elements...)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("introspect %s: %w", name, err)
		}
		tables = append(tables, table)
	}

	live, err := schema.NewSchema(tables...)
	if err != nil {
		return schema.Schema{}, err
	}

	sa.CircularGroups = live.ForeignKeyCycles()
	for _, group := range sa.CircularGroups {
		sa.Logger.Warningf("Tables in circular foreign key dependency: %s", strings.Join(group, ", "))
	}
	return live, nil
}

func (sa *SchemaAnalyzer) owns(table string) bool {
	return strings.HasPrefix(table, sa.Prefix)
}

func buildColumn(row models.Column) schema.Column {
	column := schema.NewColumn(row.Name, row.ColumnType)
	if row.IsNullable {
		column = column.Nullable()
	}
	if row.ColumnDefault != nil {
		column = column.Default(*row.ColumnDefault)
	}
	if strings.Contains(strings.ToLower(row.Extra), "auto_increment") {
		column = column.AutoIncrement()
	}
	return column
}

// buildIndexes groups index rows, which arrive ordered by index name and position
func buildIndexes(rows []models.IndexColumn) []schema.Index {
	var (
		indexes []schema.Index
		columns []string
		current *models.IndexColumn
	)
	flush := func() {
		if current == nil {
			return
		}
		switch {
		case strings.EqualFold(current.IndexName, schema.PrimaryKeyName):
			indexes = append(indexes, schema.NewPrimaryKey(columns...))
		case current.NonUnique:
			indexes = append(indexes, schema.NewIndex(columns...).Named(current.IndexName))
		default:
			indexes = append(indexes, schema.NewUniqueIndex(columns...).Named(current.IndexName))
		}
	}

	for i := range rows {
		if current == nil || rows[i].IndexName != current.IndexName {
			flush()
			current = &rows[i]
			columns = nil
		}
		columns = append(columns, rows[i].ColumnName)
	}
	flush()
	return indexes
}

// buildForeignKeys groups constraint rows, which arrive ordered by constraint name and position
func buildForeignKeys(rows []models.ForeignKeyColumn) []schema.ForeignKey {
	var foreignKeys []schema.ForeignKey
	for start := 0; start < len(rows); {
		end := start
		var local, foreign []string
		for end < len(rows) && rows[end].ConstraintName == rows[start].ConstraintName {
			local = append(local, rows[end].Column)
			foreign = append(foreign, rows[end].ReferencedColumn)
			end++
		}
		row := rows[start]
		foreignKeys = append(foreignKeys, schema.NewForeignKey(local, row.ReferencedTable, foreign).
			Named(row.ConstraintName).
			OnDelete(schema.ReferentialAction(strings.ToUpper(row.DeleteRule))).
			OnUpdate(schema.ReferentialAction(strings.ToUpper(row.UpdateRule))))
		start = end
	}
	return foreignKeys
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asInt(value interface{}) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		n, _ := strconv.Atoi(asString(value))
		return n
	}
}
