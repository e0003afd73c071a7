package schema

import "strings"

// IndexKind tags an Index as a plain index, a unique index or the primary key
type IndexKind int

const (
	KindIndex IndexKind = iota
	KindUnique
	KindPrimary
)

func (k IndexKind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindUnique:
		return "unique"
	case KindPrimary:
		return "primary"
	}
	return "unknown"
}

// PrimaryKeyName is the name MySQL gives every primary key
const PrimaryKeyName = "PRIMARY"

// Index is an ordered list of columns plus a kind tag
type Index struct {
	name    string
	kind    IndexKind
	columns []string
}

func (Index) element() {}

// NewIndex creates a plain index over the columns
func NewIndex(columns ...string) Index {
	return Index{kind: KindIndex, columns: append([]string(nil), columns...)}
}

// NewUniqueIndex creates a unique index over the columns
func NewUniqueIndex(columns ...string) Index {
	return Index{kind: KindUnique, columns: append([]string(nil), columns...)}
}

// NewPrimaryKey creates a primary key over the columns
func NewPrimaryKey(columns ...string) Index {
	return Index{name: PrimaryKeyName, kind: KindPrimary, columns: append([]string(nil), columns...)}
}

// Named returns a copy of the index with an explicit name. Primary keys keep the name PRIMARY.
func (i Index) Named(name string) Index {
	if i.kind != KindPrimary {
		i.name = name
	}
	return i
}

func (i Index) Name() string { return i.name }
func (i Index) Kind() IndexKind { return i.kind }
func (i Index) IsPrimary() bool { return i.kind == KindPrimary }
func (i Index) IsUnique() bool { return i.kind == KindUnique || i.kind == KindPrimary }
func (i Index) Columns() []string { return append([]string(nil), i.columns...) }

// SpansColumns reports whether columns are the leading columns of the index, in order
func (i Index) SpansColumns(columns []string) bool {
	if len(columns) == 0 || len(columns) > len(i.columns) {
		return false
	}
	for n, column := range columns {
		if !strings.EqualFold(i.columns[n], column) {
			return false
		}
	}
	return true
}

// SameDefinition compares kind and columns, ignoring the name
func (i Index) SameDefinition(other Index) bool {
	return i.kind == other.kind && equalFoldList(i.columns, other.columns)
}

func equalFoldList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !strings.EqualFold(a[n], b[n]) {
			return false
		}
	}
	return true
}
