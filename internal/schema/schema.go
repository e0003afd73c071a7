package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yourbasic/graph"
)

var (
	// ErrDuplicateTable is returned when two tables in a schema share a name
	ErrDuplicateTable = errors.New("duplicate table")
	// ErrUnknownTable is returned by Validate when a foreign key references a table outside the schema
	ErrUnknownTable = errors.New("unknown table")
)

// Schema is an immutable set of tables keyed by name. Structural operations return new values.
type Schema struct {
	tables []Table
	byName map[string]int
}

// NewSchema creates a schema from tables, keeping their order
func NewSchema(tables ...Table) (Schema, error) {
	seen := make(map[string]bool, len(tables))
	for _, table := range tables {
		if seen[table.name] {
			return Schema{}, fmt.Errorf("%w: %s", ErrDuplicateTable, table.name)
		}
		seen[table.name] = true
	}
	return newSchema(tables), nil
}

func newSchema(tables []Table) Schema {
	s := Schema{
		tables: append([]Table(nil), tables...),
		byName: make(map[string]int, len(tables)),
	}
	for i, table := range s.tables {
		s.byName[table.name] = i
	}
	return s
}

// Tables returns the tables in declaration order
func (s Schema) Tables() []Table { return append([]Table(nil), s.tables...) }

// TableNames returns the table names in declaration order
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s.tables))
	for _, table := range s.tables {
		names = append(names, table.name)
	}
	return names
}

// Table looks up a table by name
func (s Schema) Table(name string) (Table, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Table{}, false
	}
	return s.tables[i], true
}

func (s Schema) HasTable(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// DropTable returns a schema without the named table. Unknown names are ignored.
func (s Schema) DropTable(name string) Schema {
	tables := make([]Table, 0, len(s.tables))
	for _, table := range s.tables {
		if table.name != name {
			tables = append(tables, table)
		}
	}
	return newSchema(tables)
}

// DropForeignKeys returns a schema where every table has lost its foreign keys
func (s Schema) DropForeignKeys() Schema {
	tables := make([]Table, 0, len(s.tables))
	for _, table := range s.tables {
		tables = append(tables, table.DropForeignKeys())
	}
	return newSchema(tables)
}

// Validate checks that every foreign key references a table and columns present in the schema
func (s Schema) Validate() error {
	for _, table := range s.tables {
		for _, fk := range table.foreignKeys {
			foreign, ok := s.Table(fk.foreignTable)
			if !ok {
				return fmt.Errorf("table %s: foreign key %s: %w: %s", table.name, fk.name, ErrUnknownTable, fk.foreignTable)
			}
			for _, column := range fk.foreignColumns {
				if _, ok := foreign.Column(column); !ok {
					return fmt.Errorf("table %s: foreign key %s: %w: %s.%s", table.name, fk.name, ErrUnknownColumn, fk.foreignTable, column)
				}
			}
		}
	}
	return nil
}

// DependencyGraph returns a graph with one vertex per table, in declaration order, and an edge from
// each referenced table to each table referencing it. Self references and references to tables
// outside the schema are left out.
func (s Schema) DependencyGraph() *graph.Mutable {
	g := graph.New(len(s.tables))
	for i, table := range s.tables {
		for _, fk := range table.foreignKeys {
			j, ok := s.byName[fk.foreignTable]
			if !ok || j == i {
				continue
			}
			g.Add(j, i)
		}
	}
	return g
}

// ForeignKeyCycles returns the groups of tables that reference each other in a cycle
func (s Schema) ForeignKeyCycles() [][]string {
	var cycles [][]string
	for _, component := range graph.StrongComponents(s.DependencyGraph()) {
		if len(component) < 2 {
			continue
		}
		names := make([]string, 0, len(component))
		for _, v := range component {
			names = append(names, s.tables[v].name)
		}
		sort.Strings(names)
		cycles = append(cycles, names)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}
