package repair

import (
	"github.com/vitebski/wt-schema-repair/internal/ddl"
	"github.com/vitebski/wt-schema-repair/internal/schema"
	"github.com/yourbasic/graph"
)

// OrphanPurges returns one DELETE per foreign key of the target schema, removing rows whose non-null
// key has no match in the referenced table. Self references are skipped. Referenced tables are purged
// before the tables that reference them, falling back to declaration order when tables form a cycle.
func OrphanPurges(target schema.Schema) []ddl.Statement {
	tables := target.Tables()

	order, ok := graph.TopSort(target.DependencyGraph())
	if !ok {
		order = make([]int, len(tables))
		for i := range order {
			order[i] = i
		}
	}

	var purges []ddl.Statement
	for _, v := range order {
		table := tables[v]
		for _, fk := range table.ForeignKeys() {
			if fk.References(table.Name()) {
				continue
			}
			purges = append(purges, ddl.DeleteOrphansStatement(table.Name(), fk))
		}
	}
	return purges
}
