package schema

type columnDocument struct {
	Name          string  `yaml:"name"`
	Type          string  `yaml:"type"`
	Nullable      bool    `yaml:"nullable,omitempty"`
	Default       *string `yaml:"default,omitempty"`
	AutoIncrement bool    `yaml:"auto_increment,omitempty"`
}

type indexDocument struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Columns []string `yaml:"columns"`
}

type foreignKeyDocument struct {
	Name           string   `yaml:"name"`
	Columns        []string `yaml:"columns"`
	ForeignTable   string   `yaml:"references"`
	ForeignColumns []string `yaml:"foreign_columns"`
	OnDelete       string   `yaml:"on_delete"`
	OnUpdate       string   `yaml:"on_update"`
}

type tableDocument struct {
	Name        string               `yaml:"name"`
	Columns     []columnDocument     `yaml:"columns"`
	Indexes     []indexDocument      `yaml:"indexes,omitempty"`
	ForeignKeys []foreignKeyDocument `yaml:"foreign_keys,omitempty"`
}

type schemaDocument struct {
	Tables []tableDocument `yaml:"tables"`
}

// MarshalYAML implements yaml.Marshaler
func (s Schema) MarshalYAML() (interface{}, error) {
	doc := schemaDocument{Tables: make([]tableDocument, 0, len(s.tables))}
	for _, table := range s.tables {
		td := tableDocument{Name: table.name}
		for _, column := range table.columns {
			td.Columns = append(td.Columns, columnDocument{
				Name:          column.name,
				Type:          column.columnType,
				Nullable:      column.nullable,
				Default:       column.defaultValue,
				AutoIncrement: column.autoIncrement,
			})
		}
		for _, index := range table.Indexes() {
			td.Indexes = append(td.Indexes, indexDocument{
				Name:    index.name,
				Kind:    index.kind.String(),
				Columns: index.Columns(),
			})
		}
		for _, fk := range table.foreignKeys {
			td.ForeignKeys = append(td.ForeignKeys, foreignKeyDocument{
				Name:           fk.name,
				Columns:        fk.LocalColumns(),
				ForeignTable:   fk.foreignTable,
				ForeignColumns: fk.ForeignColumns(),
				OnDelete:       string(fk.onDelete),
				OnUpdate:       string(fk.onUpdate),
			})
		}
		doc.Tables = append(doc.Tables, td)
	}
	return doc, nil
}
