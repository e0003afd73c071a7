package schema

import "strings"

// ReferentialAction is the ON DELETE / ON UPDATE behavior of a foreign key
type ReferentialAction string

const (
	Restrict ReferentialAction = "RESTRICT"
	Cascade  ReferentialAction = "CASCADE"
	SetNull  ReferentialAction = "SET NULL"
	NoAction ReferentialAction = "NO ACTION"
)

// ForeignKey references foreignColumns of foreignTable from localColumns, matched by position
type ForeignKey struct {
	name           string
	localColumns   []string
	foreignTable   string
	foreignColumns []string
	onDelete       ReferentialAction
	onUpdate       ReferentialAction
}

func (ForeignKey) element() {}

// NewForeignKey creates a foreign key with RESTRICT semantics. Arity is checked when the table is built.
func NewForeignKey(localColumns []string, foreignTable string, foreignColumns []string) ForeignKey {
	return ForeignKey{
		localColumns:   append([]string(nil), localColumns...),
		foreignTable:   foreignTable,
		foreignColumns: append([]string(nil), foreignColumns...),
		onDelete:       Restrict,
		onUpdate:       Restrict,
	}
}

// Named returns a copy of the foreign key with an explicit constraint name
func (fk ForeignKey) Named(name string) ForeignKey {
	fk.name = name
	return fk
}

// OnDelete returns a copy of the foreign key with the given ON DELETE action
func (fk ForeignKey) OnDelete(action ReferentialAction) ForeignKey {
	fk.onDelete = action
	return fk
}

// OnUpdate returns a copy of the foreign key with the given ON UPDATE action
func (fk ForeignKey) OnUpdate(action ReferentialAction) ForeignKey {
	fk.onUpdate = action
	return fk
}

func (fk ForeignKey) Name() string { return fk.name }
func (fk ForeignKey) LocalColumns() []string { return append([]string(nil), fk.localColumns...) }
func (fk ForeignKey) ForeignTable() string { return fk.foreignTable }
func (fk ForeignKey) ForeignColumns() []string { return append([]string(nil), fk.foreignColumns...) }
func (fk ForeignKey) DeleteRule() ReferentialAction { return fk.onDelete }
func (fk ForeignKey) UpdateRule() ReferentialAction { return fk.onUpdate }

// References reports whether the foreign key points at the named table
func (fk ForeignKey) References(table string) bool {
	return strings.EqualFold(fk.foreignTable, table)
}

// SameDefinition compares columns, referenced table and referential actions, ignoring the name.
// NO ACTION and RESTRICT are the same thing in MySQL.
func (fk ForeignKey) SameDefinition(other ForeignKey) bool {
	return equalFoldList(fk.localColumns, other.localColumns) &&
		strings.EqualFold(fk.foreignTable, other.foreignTable) &&
		equalFoldList(fk.foreignColumns, other.foreignColumns) &&
		normalizeAction(fk.onDelete) == normalizeAction(other.onDelete) &&
		normalizeAction(fk.onUpdate) == normalizeAction(other.onUpdate)
}

func normalizeAction(action ReferentialAction) ReferentialAction {
	switch strings.ToUpper(string(action)) {
	case "", string(NoAction), string(Restrict):
		return Restrict
	}
	return ReferentialAction(strings.ToUpper(string(action)))
}
