package ddl

import (
	"fmt"
	"strings"

	"github.com/vitebski/wt-schema-repair/internal/schema"
)

// Quote quotes a MySQL identifier
func Quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// QuoteList quotes each identifier and joins them with commas
func QuoteList(identifiers []string) string {
	quoted := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		quoted = append(quoted, Quote(identifier))
	}
	return strings.Join(quoted, ", ")
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), "'", "''") + "'"
}

// ColumnDefinition renders the column as it appears in CREATE TABLE or ALTER TABLE
func ColumnDefinition(column schema.Column) string {
	var sb strings.Builder
	sb.WriteString(Quote(column.Name()))
	sb.WriteString(" ")
	sb.WriteString(column.Type())
	if column.IsNullable() {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if value, ok := column.DefaultValue(); ok {
		sb.WriteString(" DEFAULT ")
		if strings.EqualFold(value, "CURRENT_TIMESTAMP") {
			sb.WriteString("CURRENT_TIMESTAMP")
		} else {
			sb.WriteString(quoteLiteral(value))
		}
	}
	if column.IsAutoIncrement() {
		sb.WriteString(" AUTO_INCREMENT")
	}
	return sb.String()
}

func indexDefinition(index schema.Index) string {
	switch index.Kind() {
	case schema.KindPrimary:
		return fmt.Sprintf("PRIMARY KEY (%s)", QuoteList(index.Columns()))
	case schema.KindUnique:
		return fmt.Sprintf("UNIQUE INDEX %s (%s)", Quote(index.Name()), QuoteList(index.Columns()))
	}
	return fmt.Sprintf("INDEX %s (%s)", Quote(index.Name()), QuoteList(index.Columns()))
}

// CreateTableStatement creates the table with its columns and indexes. Foreign keys are left to
// AddForeignKeyStatement so they can be added once every table exists.
func CreateTableStatement(table schema.Table) Statement {
	var parts []string
	for _, column := range table.Columns() {
		parts = append(parts, "  "+ColumnDefinition(column))
	}
	for _, index := range table.Indexes() {
		parts = append(parts, "  "+indexDefinition(index))
	}
	sql := fmt.Sprintf("CREATE TABLE %s (\n%s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", Quote(table.Name()), strings.Join(parts, ",\n"))
	return Statement{Kind: CreateTable, Table: table.Name(), Name: table.Name(), SQL: sql}
}

func DropTableStatement(table string) Statement {
	return Statement{Kind: DropTable, Table: table, Name: table, SQL: "DROP TABLE " + Quote(table)}
}

func AddColumnStatement(table string, column schema.Column) Statement {
	return Statement{
		Kind:  AddColumn,
		Table: table,
		Name:  column.Name(),
		SQL:   fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", Quote(table), ColumnDefinition(column)),
	}
}

func ModifyColumnStatement(table string, column schema.Column) Statement {
	return Statement{
		Kind:  ModifyColumn,
		Table: table,
		Name:  column.Name(),
		SQL:   fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", Quote(table), ColumnDefinition(column)),
	}
}

func DropColumnStatement(table, column string) Statement {
	return Statement{
		Kind:  DropColumn,
		Table: table,
		Name:  column,
		SQL:   fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", Quote(table), Quote(column)),
	}
}

func CreateIndexStatement(table string, index schema.Index) Statement {
	if index.IsPrimary() {
		return Statement{
			Kind:  AddPrimaryKey,
			Table: table,
			Name:  index.Name(),
			SQL:   fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", Quote(table), QuoteList(index.Columns())),
		}
	}
	unique := ""
	if index.IsUnique() {
		unique = "UNIQUE "
	}
	return Statement{
		Kind:  AddIndex,
		Table: table,
		Name:  index.Name(),
		SQL:   fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, Quote(index.Name()), Quote(table), QuoteList(index.Columns())),
	}
}

func DropIndexStatement(table string, index schema.Index) Statement {
	if index.IsPrimary() {
		return Statement{
			Kind:  DropPrimaryKey,
			Table: table,
			Name:  index.Name(),
			SQL:   fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY", Quote(table)),
		}
	}
	return Statement{
		Kind:  DropIndex,
		Table: table,
		Name:  index.Name(),
		SQL:   fmt.Sprintf("DROP INDEX %s ON %s", Quote(index.Name()), Quote(table)),
	}
}

func AddForeignKeyStatement(table string, fk schema.ForeignKey) Statement {
	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
		Quote(table),
		Quote(fk.Name()),
		QuoteList(fk.LocalColumns()),
		Quote(fk.ForeignTable()),
		QuoteList(fk.ForeignColumns()),
		fk.DeleteRule(),
		fk.UpdateRule(),
	)
	return Statement{Kind: AddForeignKey, Table: table, Name: fk.Name(), SQL: sql}
}

func DropForeignKeyStatement(table, name string) Statement {
	return Statement{
		Kind:  DropForeignKey,
		Table: table,
		Name:  name,
		SQL:   fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", Quote(table), Quote(name)),
	}
}

// DeleteOrphansStatement deletes the rows of table whose non-null foreign key tuple has no match in
// the referenced table
func DeleteOrphansStatement(table string, fk schema.ForeignKey) Statement {
	local := fk.LocalColumns()
	conditions := []string{
		fmt.Sprintf("(%s) NOT IN (SELECT %s FROM %s)", QuoteList(local), QuoteList(fk.ForeignColumns()), Quote(fk.ForeignTable())),
	}
	for _, column := range local {
		conditions = append(conditions, Quote(column)+" IS NOT NULL")
	}
	return Statement{
		Kind:  DeleteOrphans,
		Table: table,
		Name:  fk.Name(),
		SQL:   fmt.Sprintf("DELETE FROM %s WHERE %s", Quote(table), strings.Join(conditions, " AND ")),
	}
}
