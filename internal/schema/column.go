package schema

import "fmt"

// Element is one component of a table declaration: a Column, an Index or a ForeignKey
type Element interface {
	element()
}

// Column represents a table column. The zero value is not useful, use one of the constructors.
type Column struct {
	name          string
	columnType    string
	nullable      bool
	defaultValue  *string
	autoIncrement bool
}

func (Column) element() {}

// NewColumn creates a NOT NULL column with the given MySQL column type, e.g. "varchar(32)"
func NewColumn(name, columnType string) Column {
	return Column{name: name, columnType: columnType}
}

// Integer creates an int column
func Integer(name string) Column { return NewColumn(name, "int") }

// TinyInteger creates a tinyint column
func TinyInteger(name string) Column { return NewColumn(name, "tinyint") }

// Varchar creates a varchar column of the given length
func Varchar(name string, length int) Column {
	return NewColumn(name, fmt.Sprintf("varchar(%d)", length))
}

// Char creates a fixed width char column
func Char(name string, length int) Column {
	return NewColumn(name, fmt.Sprintf("char(%d)", length))
}

// Text creates a text column
func Text(name string) Column { return NewColumn(name, "text") }

// LongText creates a longtext column
func LongText(name string) Column { return NewColumn(name, "longtext") }

// Timestamp creates a timestamp column
func Timestamp(name string) Column { return NewColumn(name, "timestamp") }

// LongBlob creates a longblob column
func LongBlob(name string) Column { return NewColumn(name, "longblob") }

// Nullable returns a copy of the column that accepts NULL
func (c Column) Nullable() Column {
	c.nullable = true
	return c
}

// Default returns a copy of the column with a default value. CURRENT_TIMESTAMP is kept as a keyword,
// anything else is treated as a literal.
func (c Column) Default(value string) Column {
	c.defaultValue = &value
	return c
}

// AutoIncrement returns a copy of the column with AUTO_INCREMENT set
func (c Column) AutoIncrement() Column {
	c.autoIncrement = true
	return c
}

func (c Column) Name() string { return c.name }
func (c Column) Type() string { return c.columnType }
func (c Column) IsNullable() bool { return c.nullable }
func (c Column) IsAutoIncrement() bool { return c.autoIncrement }

// DefaultValue returns the default value and whether one is declared
func (c Column) DefaultValue() (string, bool) {
	if c.defaultValue == nil {
		return "", false
	}
	return *c.defaultValue, true
}
