package models

// Column represents a row of information_schema.columns
type Column struct {
	Table         string
	Name          string
	ColumnType    string
	IsNullable    bool
	ColumnDefault *string
	Extra         string
}

// IndexColumn represents a row of information_schema.statistics
type IndexColumn struct {
	Table      string
	IndexName  string
	ColumnName string
	NonUnique  bool
	SeqInIndex int
}

// ForeignKeyColumn represents one column of a foreign key constraint, from
// information_schema.key_column_usage joined with information_schema.referential_constraints
type ForeignKeyColumn struct {
	Table            string
	ConstraintName   string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	DeleteRule       string
	UpdateRule       string
}
