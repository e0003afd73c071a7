package generator

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/wt-schema-repair/internal/ddl"
	"github.com/vitebski/wt-schema-repair/internal/schema"
)

// DDLGenerator computes the MySQL statements that turn one schema into another
type DDLGenerator struct {
	Logger *logrus.Logger
}

// NewDDLGenerator creates a new DDL generator
func NewDDLGenerator(logger *logrus.Logger) *DDLGenerator {
	return &DDLGenerator{
		Logger: logger,
	}
}

// Diff returns the statements that transform live into target. Statements are emitted as foreign key
// drops, table creations, per table alterations, table drops, then foreign key additions, but callers
// should not rely on that and classify them before execution.
func (g *DDLGenerator) Diff(live, target schema.Schema) ([]ddl.Statement, error) {
	var dropFKs, changes, dropTables, addFKs []ddl.Statement

	for _, table := range live.Tables() {
		if target.HasTable(table.Name()) {
			continue
		}
		for _, fk := range table.ForeignKeys() {
			dropFKs = append(dropFKs, ddl.DropForeignKeyStatement(table.Name(), fk.Name()))
		}
		dropTables = append(dropTables, ddl.DropTableStatement(table.Name()))
	}

	for _, table := range target.Tables() {
		current, exists := live.Table(table.Name())
		if !exists {
			changes = append(changes, ddl.CreateTableStatement(table))
			for _, fk := range table.ForeignKeys() {
				addFKs = append(addFKs, ddl.AddForeignKeyStatement(table.Name(), fk))
			}
			continue
		}

		dropped, added, kept := matchForeignKeys(current.ForeignKeys(), table.ForeignKeys())
		for _, fk := range kept {
			if reason, ok := blocksChange(live, target, current, table, fk.current); ok {
				g.Logger.Debugf("Rebuilding foreign key %s.%s: %s", table.Name(), fk.current.Name(), reason)
				dropped = append(dropped, fk.current)
				added = append(added, fk.target)
			}
		}
		for _, fk := range dropped {
			dropFKs = append(dropFKs, ddl.DropForeignKeyStatement(table.Name(), fk.Name()))
		}
		for _, fk := range added {
			addFKs = append(addFKs, ddl.AddForeignKeyStatement(table.Name(), fk))
		}

		changes = append(changes, g.alterTable(current, table)...)
	}

	statements := make([]ddl.Statement, 0, len(dropFKs)+len(changes)+len(dropTables)+len(addFKs))
	statements = append(statements, dropFKs...)
	statements = append(statements, changes...)
	statements = append(statements, dropTables...)
	statements = append(statements, addFKs...)

	g.Logger.Debugf("Schema diff: %d foreign key drops, %d changes, %d table drops, %d foreign key additions",
		len(dropFKs), len(changes), len(dropTables), len(addFKs))
	return statements, nil
}

// alterTable compares two versions of the same table, ignoring foreign keys
func (g *DDLGenerator) alterTable(current, target schema.Table) []ddl.Statement {
	name := target.Name()
	var dropIndexes, addColumns, modifyColumns, dropColumns, addPrimary, addIndexes []ddl.Statement

	dropped, added, _ := matchIndexes(current.Indexes(), target.Indexes())
	for _, index := range dropped {
		dropIndexes = append(dropIndexes, ddl.DropIndexStatement(name, index))
	}
	for _, index := range added {
		if index.IsPrimary() {
			addPrimary = append(addPrimary, ddl.CreateIndexStatement(name, index))
		} else {
			addIndexes = append(addIndexes, ddl.CreateIndexStatement(name, index))
		}
	}

	for _, column := range target.Columns() {
		existing, ok := current.Column(column.Name())
		if !ok {
			addColumns = append(addColumns, ddl.AddColumnStatement(name, column))
			continue
		}
		if !sameColumn(existing, column) {
			g.Logger.Debugf("Column %s.%s differs: %s -> %s", name, column.Name(), ddl.ColumnDefinition(existing), ddl.ColumnDefinition(column))
			modifyColumns = append(modifyColumns, ddl.ModifyColumnStatement(name, column))
		}
	}

	for _, column := range current.Columns() {
		if _, ok := target.Column(column.Name()); !ok {
			dropColumns = append(dropColumns, ddl.DropColumnStatement(name, column.Name()))
		}
	}

	var statements []ddl.Statement
	statements = append(statements, dropIndexes...)
	statements = append(statements, addColumns...)
	statements = append(statements, modifyColumns...)
	statements = append(statements, dropColumns...)
	statements = append(statements, addPrimary...)
	return append(statements, addIndexes...)
}

// blocksChange reports whether a live foreign key that is kept by definition must still be dropped
// and added again, because MySQL refuses to alter or drop a column or index the key depends on
// while the key exists. Both sides of the key are checked.
func blocksChange(live, target schema.Schema, current, table schema.Table, fk schema.ForeignKey) (string, bool) {
	if column, ok := changedColumn(current, table, fk.LocalColumns()); ok {
		return "column " + column + " changes", true
	}
	if reliesOnDroppedIndex(current, table, fk.LocalColumns()) {
		return "its index is dropped", true
	}

	currentRef, ok := live.Table(fk.ForeignTable())
	if !ok {
		return "", false
	}
	targetRef, ok := target.Table(fk.ForeignTable())
	if !ok {
		return "", false
	}
	if column, ok := changedColumn(currentRef, targetRef, fk.ForeignColumns()); ok {
		return "referenced column " + fk.ForeignTable() + "." + column + " changes", true
	}
	if reliesOnDroppedIndex(currentRef, targetRef, fk.ForeignColumns()) {
		return "the referenced index on " + fk.ForeignTable() + " is dropped", true
	}
	return "", false
}

// changedColumn returns the first of columns that is modified or dropped between current and target
func changedColumn(current, target schema.Table, columns []string) (string, bool) {
	for _, name := range columns {
		existing, ok := current.Column(name)
		if !ok {
			continue
		}
		wanted, ok := target.Column(name)
		if !ok || !sameColumn(existing, wanted) {
			return name, true
		}
	}
	return "", false
}

// reliesOnDroppedIndex reports whether every live index starting with columns is dropped
func reliesOnDroppedIndex(current, target schema.Table, columns []string) bool {
	dropped, _, _ := matchIndexes(current.Indexes(), target.Indexes())
	covered := false
	for _, index := range dropped {
		if index.SpansColumns(columns) {
			covered = true
		}
	}
	if !covered {
		return false
	}
	for _, index := range current.Indexes() {
		if index.SpansColumns(columns) && !containsIndex(dropped, index) {
			return false
		}
	}
	return true
}

func containsIndex(indexes []schema.Index, index schema.Index) bool {
	for _, candidate := range indexes {
		if strings.EqualFold(candidate.Name(), index.Name()) && candidate.SameDefinition(index) {
			return true
		}
	}
	return false
}

type pair[T any] struct {
	current, target T
}

// matchIndexes pairs live and target indexes with the same definition
func matchIndexes(current, target []schema.Index) (dropped, added []schema.Index, kept []pair[schema.Index]) {
	return match(current, target, schema.Index.Name, schema.Index.SameDefinition)
}

// matchForeignKeys pairs live and target foreign keys with the same definition
func matchForeignKeys(current, target []schema.ForeignKey) (dropped, added []schema.ForeignKey, kept []pair[schema.ForeignKey]) {
	return match(current, target, schema.ForeignKey.Name, schema.ForeignKey.SameDefinition)
}

// match pairs elements with the same definition, preferring pairs that also share a name. A live
// element is only kept under a different name when no target element claims its name, so a later
// create can never collide with a kept element.
func match[T any](current, target []T, name func(T) string, same func(T, T) bool) (dropped, added []T, kept []pair[T]) {
	claimed := make(map[string]bool)
	for _, element := range target {
		claimed[strings.ToLower(name(element))] = true
	}

	usedCurrent := make([]bool, len(current))
	partner := make([]int, len(target))
	for i := range partner {
		partner[i] = -1
	}

	for i, want := range target {
		for j, have := range current {
			if !usedCurrent[j] && same(want, have) && strings.EqualFold(name(want), name(have)) {
				usedCurrent[j], partner[i] = true, j
				break
			}
		}
	}
	for i, want := range target {
		if partner[i] >= 0 {
			continue
		}
		for j, have := range current {
			if !usedCurrent[j] && same(want, have) && !claimed[strings.ToLower(name(have))] {
				usedCurrent[j], partner[i] = true, j
				break
			}
		}
	}

	for j, have := range current {
		if !usedCurrent[j] {
			dropped = append(dropped, have)
		}
	}
	for i, want := range target {
		if partner[i] < 0 {
			added = append(added, want)
		} else {
			kept = append(kept, pair[T]{current: current[partner[i]], target: want})
		}
	}
	return dropped, added, kept
}

var displayWidthRegexp = regexp.MustCompile(`^(tinyint|smallint|mediumint|int|integer|bigint)\(\d+\)`)

// normalizeType lowercases a column type and removes integer display widths, which MySQL 8 no
// longer reports
func normalizeType(columnType string) string {
	t := strings.ToLower(strings.TrimSpace(columnType))
	t = displayWidthRegexp.ReplaceAllString(t, "$1")
	if strings.HasPrefix(t, "integer") {
		t = "int" + strings.TrimPrefix(t, "integer")
	}
	return t
}

// normalizeDefault accounts for the ways MySQL and MariaDB report column defaults
func normalizeDefault(column schema.Column) (string, bool) {
	value, ok := column.DefaultValue()
	if !ok {
		return "", false
	}
	if strings.EqualFold(value, "NULL") && column.IsNullable() {
		return "", false
	}
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		value = strings.ReplaceAll(value[1:len(value)-1], "''", "'")
	}
	switch strings.ToLower(value) {
	case "current_timestamp", "current_timestamp()", "now()":
		return "CURRENT_TIMESTAMP", true
	}
	return value, true
}

func sameColumn(a, b schema.Column) bool {
	if normalizeType(a.Type()) != normalizeType(b.Type()) {
		return false
	}
	if a.IsNullable() != b.IsNullable() || a.IsAutoIncrement() != b.IsAutoIncrement() {
		return false
	}
	aDefault, aHas := normalizeDefault(a)
	bDefault, bHas := normalizeDefault(b)
	return aHas == bHas && aDefault == bDefault
}
