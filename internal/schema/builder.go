package schema

import (
	"fmt"
)

// Builder constructs tables and schemas, applying a namespace prefix to every table and constraint
// name exactly once. Two builders with the same prefix produce identical values from the same input.
type Builder struct {
	prefix string
}

// NewBuilder creates a builder for the given prefix, which may be empty
func NewBuilder(prefix string) Builder {
	return Builder{prefix: prefix}
}

func (b Builder) Prefix() string { return b.prefix }

// Identifier applies the prefix to a name
func (b Builder) Identifier(name string) string {
	return b.prefix + name
}

// Table partitions elements by kind, keeping input order within each kind, names unnamed indexes
// and foreign keys <table>_ix<n>, <table>_ux<n> and <table>_fk<n>, and validates the result.
// Every foreign key must be covered by an index starting with its local columns.
func (b Builder) Table(name string, elements ...Element) (Table, error) {
	t := Table{name: b.Identifier(name)}

	for _, element := range elements {
		switch e := element.(type) {
		case Column:
			t.columns = append(t.columns, e)
		case Index:
			switch e.kind {
			case KindPrimary:
				t.primaryKeys = append(t.primaryKeys, e)
			case KindUnique:
				e.name = b.indexName(name, e.name, "_ux", len(t.uniqueIndexes)+1)
				t.uniqueIndexes = append(t.uniqueIndexes, e)
			default:
				e.name = b.indexName(name, e.name, "_ix", len(t.indexes)+1)
				t.indexes = append(t.indexes, e)
			}
		case ForeignKey:
			e.name = b.indexName(name, e.name, "_fk", len(t.foreignKeys)+1)
			e.foreignTable = b.Identifier(e.foreignTable)
			t.foreignKeys = append(t.foreignKeys, e)
		default:
			return Table{}, fmt.Errorf("table %s: unsupported element %T", name, element)
		}
	}

	if err := t.validate(name); err != nil {
		return Table{}, err
	}
	return t, nil
}

// MustTable is like Table but panics on error. It is meant for static declarations.
func (b Builder) MustTable(name string, elements ...Element) Table {
	t, err := b.Table(name, elements...)
	if err != nil {
		panic(err)
	}
	return t
}

// Schema composes tables into a schema. Table names must be unique.
func (b Builder) Schema(tables ...Table) (Schema, error) {
	return NewSchema(tables...)
}

func (b Builder) indexName(table, explicit, suffix string, n int) string {
	if explicit != "" {
		return b.Identifier(explicit)
	}
	return b.Identifier(fmt.Sprintf("%s%s%d", table, suffix, n))
}
