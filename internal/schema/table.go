package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnindexedForeignKey is returned when no index on the table starts with the foreign key columns
	ErrUnindexedForeignKey = errors.New("foreign key columns must be indexed")
	// ErrForeignKeyArity is returned when local and foreign column counts differ or are zero
	ErrForeignKeyArity = errors.New("foreign key column count mismatch")
	// ErrUnknownColumn is returned when an index or foreign key names a column the table does not have
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDuplicateColumn is returned when two columns share a name
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrDuplicatePrimaryKey is returned when more than one primary key is declared
	ErrDuplicatePrimaryKey = errors.New("more than one primary key")
)

// Table is an immutable table definition. Build one with Builder.Table.
type Table struct {
	name          string
	columns       []Column
	primaryKeys   []Index
	uniqueIndexes []Index
	indexes       []Index
	foreignKeys   []ForeignKey
}

func (t Table) Name() string { return t.name }

// Columns returns the columns in declaration order
func (t Table) Columns() []Column { return append([]Column(nil), t.columns...) }

// Column looks up a column by name
func (t Table) Column(name string) (Column, bool) {
	for _, column := range t.columns {
		if strings.EqualFold(column.name, name) {
			return column, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary key, if the table has one
func (t Table) PrimaryKey() (Index, bool) {
	if len(t.primaryKeys) == 0 {
		return Index{}, false
	}
	return t.primaryKeys[0], true
}

// UniqueIndexes returns the unique indexes in declaration order
func (t Table) UniqueIndexes() []Index { return append([]Index(nil), t.uniqueIndexes...) }

// PlainIndexes returns the non-unique indexes in declaration order
func (t Table) PlainIndexes() []Index { return append([]Index(nil), t.indexes...) }

// Indexes returns the primary key, then unique indexes, then plain indexes
func (t Table) Indexes() []Index {
	all := make([]Index, 0, len(t.primaryKeys)+len(t.uniqueIndexes)+len(t.indexes))
	all = append(all, t.primaryKeys...)
	all = append(all, t.uniqueIndexes...)
	return append(all, t.indexes...)
}

// ForeignKeys returns the foreign keys in declaration order
func (t Table) ForeignKeys() []ForeignKey { return append([]ForeignKey(nil), t.foreignKeys...) }

// DropForeignKeys returns a copy of the table without any foreign keys
func (t Table) DropForeignKeys() Table {
	t.columns = append([]Column(nil), t.columns...)
	t.primaryKeys = append([]Index(nil), t.primaryKeys...)
	t.uniqueIndexes = append([]Index(nil), t.uniqueIndexes...)
	t.indexes = append([]Index(nil), t.indexes...)
	t.foreignKeys = nil
	return t
}

// DropColumn returns a copy of the table without the named column. Indexes and foreign keys are
// kept, so dropping a column one of them uses fails with ErrUnknownColumn.
func (t Table) DropColumn(name string) (Table, error) {
	columns := make([]Column, 0, len(t.columns))
	for _, column := range t.columns {
		if !strings.EqualFold(column.name, name) {
			columns = append(columns, column)
		}
	}
	foreignKeys := append([]ForeignKey(nil), t.foreignKeys...)
	t = t.DropForeignKeys()
	t.columns = columns
	t.foreignKeys = foreignKeys
	if err := t.validate(t.name); err != nil {
		return Table{}, err
	}
	return t, nil
}

// ColumnsAreIndexed reports whether some index on the table starts with the columns
func (t Table) ColumnsAreIndexed(columns []string) bool {
	for _, index := range t.Indexes() {
		if index.SpansColumns(columns) {
			return true
		}
	}
	return false
}

func (t Table) validate(declaredName string) error {
	seen := make(map[string]bool)
	for _, column := range t.columns {
		key := strings.ToLower(column.name)
		if seen[key] {
			return fmt.Errorf("table %s: %w: %s", declaredName, ErrDuplicateColumn, column.name)
		}
		seen[key] = true
	}

	if len(t.primaryKeys) > 1 {
		return fmt.Errorf("table %s: %w", declaredName, ErrDuplicatePrimaryKey)
	}

	for _, index := range t.Indexes() {
		for _, column := range index.columns {
			if !seen[strings.ToLower(column)] {
				return fmt.Errorf("table %s: index %s: %w: %s", declaredName, index.name, ErrUnknownColumn, column)
			}
		}
	}

	for _, fk := range t.foreignKeys {
		if len(fk.localColumns) == 0 || len(fk.localColumns) != len(fk.foreignColumns) {
			return fmt.Errorf("table %s: foreign key %s: %w: %d local, %d foreign",
				declaredName, fk.name, ErrForeignKeyArity, len(fk.localColumns), len(fk.foreignColumns))
		}
		for _, column := range fk.localColumns {
			if !seen[strings.ToLower(column)] {
				return fmt.Errorf("table %s: foreign key %s: %w: %s", declaredName, fk.name, ErrUnknownColumn, column)
			}
		}
		if !t.ColumnsAreIndexed(fk.localColumns) {
			return fmt.Errorf("table %s: %w: %s", declaredName, ErrUnindexedForeignKey, strings.Join(fk.localColumns, ", "))
		}
	}

	return nil
}
