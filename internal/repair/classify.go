package repair

import (
	"github.com/vitebski/wt-schema-repair/internal/ddl"
)

// Phases holds schema changes split by the order they must run in. Each bucket keeps the input order.
type Phases struct {
	DropForeignKeys []ddl.Statement
	Changes         []ddl.Statement
	AddForeignKeys  []ddl.Statement
}

// Classify splits statements into foreign key drops, other changes and foreign key additions
func Classify(statements []ddl.Statement) Phases {
	var phases Phases
	for _, statement := range statements {
		switch statement.Kind.Phase() {
		case ddl.PhaseDropForeignKeys:
			phases.DropForeignKeys = append(phases.DropForeignKeys, statement)
		case ddl.PhaseAddForeignKeys:
			phases.AddForeignKeys = append(phases.AddForeignKeys, statement)
		default:
			phases.Changes = append(phases.Changes, statement)
		}
	}
	return phases
}

// ClassifyText classifies raw statement text by content
func ClassifyText(queries []string) Phases {
	return Classify(ddl.ParseAll(queries))
}

// Len returns the number of classified statements
func (p Phases) Len() int {
	return len(p.DropForeignKeys) + len(p.Changes) + len(p.AddForeignKeys)
}

// Ordered returns the statements in execution order, with purges placed before the foreign key additions
func (p Phases) Ordered(purges []ddl.Statement) []ddl.Statement {
	statements := make([]ddl.Statement, 0, p.Len()+len(purges))
	statements = append(statements, p.DropForeignKeys...)
	statements = append(statements, p.Changes...)
	statements = append(statements, purges...)
	return append(statements, p.AddForeignKeys...)
}
