package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/wt-schema-repair/internal/schema"
)

func TestParseClassifiesByContent(t *testing.T) {
	tests := []struct {
		sql   string
		kind  Kind
		phase Phase
	}{
		{"ALTER TABLE `wt_link` DROP FOREIGN KEY `wt_link_fk1`", DropForeignKey, PhaseDropForeignKeys},
		{"ALTER TABLE `wt_link` ADD CONSTRAINT `wt_link_fk1` FOREIGN KEY (`l_file`) REFERENCES `wt_gedcom` (`gedcom_id`)", AddForeignKey, PhaseAddForeignKeys},
		{"ALTER TABLE `wt_link` ADD COLUMN `x` int NOT NULL", Other, PhaseChanges},
		{"DROP TABLE `wt_obsolete`", Other, PhaseChanges},
		{"DELETE FROM `wt_link` WHERE 1", DeleteOrphans, PhaseChanges},
	}

	for _, tt := range tests {
		statement := Parse(tt.sql)
		assert.Equal(t, tt.kind, statement.Kind, tt.sql)
		assert.Equal(t, tt.phase, statement.Kind.Phase(), tt.sql)
		assert.Equal(t, tt.sql, statement.SQL)
	}
}

func TestParseAllSkipsBlankStatements(t *testing.T) {
	statements := ParseAll([]string{"DROP TABLE `a`", "  ", "", "DROP TABLE `b`"})
	require.Len(t, statements, 2)
	assert.Equal(t, "DROP TABLE `b`", statements[1].SQL)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "`wt_user`", Quote("wt_user"))
	assert.Equal(t, "`we``ird`", Quote("we`ird"))
	assert.Equal(t, "`a`, `b`", QuoteList([]string{"a", "b"}))
}

func TestColumnDefinition(t *testing.T) {
	assert.Equal(t, "`id` int NOT NULL AUTO_INCREMENT", ColumnDefinition(schema.Integer("id").AutoIncrement()))
	assert.Equal(t, "`name` varchar(32) NULL DEFAULT 'it''s'", ColumnDefinition(schema.Varchar("name", 32).Nullable().Default("it's")))
	assert.Equal(t, "`at` timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP", ColumnDefinition(schema.Timestamp("at").Default("CURRENT_TIMESTAMP")))
}

func TestGeneratedStatementsFollowTheTextConvention(t *testing.T) {
	b := schema.NewBuilder("wt_")
	table := b.MustTable("child",
		schema.Integer("id").AutoIncrement(),
		schema.Integer("parent_id").Nullable(),
		schema.NewPrimaryKey("id"),
		schema.NewIndex("parent_id"),
		schema.NewForeignKey([]string{"parent_id"}, "parent", []string{"id"}).OnDelete(schema.Cascade),
	)
	fk := table.ForeignKeys()[0]

	create := CreateTableStatement(table)
	assert.Equal(t, CreateTable, create.Kind)
	assert.NotContains(t, create.SQL, "FOREIGN KEY")
	assert.Contains(t, create.SQL, "PRIMARY KEY (`id`)")
	assert.Contains(t, create.SQL, "INDEX `wt_child_ix1` (`parent_id`)")

	add := AddForeignKeyStatement(table.Name(), fk)
	assert.Equal(t, AddForeignKey, Parse(add.SQL).Kind)
	assert.Equal(t, "ALTER TABLE `wt_child` ADD CONSTRAINT `wt_child_fk1` FOREIGN KEY (`parent_id`) REFERENCES `wt_parent` (`id`) ON DELETE CASCADE ON UPDATE RESTRICT", add.SQL)

	drop := DropForeignKeyStatement(table.Name(), fk.Name())
	assert.Equal(t, DropForeignKey, Parse(drop.SQL).Kind)

	for _, statement := range []Statement{
		create,
		DropTableStatement("wt_child"),
		AddColumnStatement("wt_child", schema.Integer("x")),
		ModifyColumnStatement("wt_child", schema.Integer("x")),
		DropColumnStatement("wt_child", "x"),
		CreateIndexStatement("wt_child", table.PlainIndexes()[0]),
		DropIndexStatement("wt_child", table.PlainIndexes()[0]),
	} {
		assert.Equal(t, PhaseChanges, Parse(statement.SQL).Kind.Phase(), statement.SQL)
		assert.Equal(t, PhaseChanges, statement.Kind.Phase(), statement.SQL)
	}
}

func TestPrimaryKeyStatements(t *testing.T) {
	pk := schema.NewPrimaryKey("a", "b")
	assert.Equal(t, "ALTER TABLE `t` ADD PRIMARY KEY (`a`, `b`)", CreateIndexStatement("t", pk).SQL)
	assert.Equal(t, "ALTER TABLE `t` DROP PRIMARY KEY", DropIndexStatement("t", pk).SQL)
	assert.Equal(t, "CREATE UNIQUE INDEX `u` ON `t` (`a`)", CreateIndexStatement("t", schema.NewUniqueIndex("a").Named("u")).SQL)
}

func TestDeleteOrphansStatement(t *testing.T) {
	fk := schema.NewForeignKey([]string{"m_id", "m_file"}, "media", []string{"m_id", "m_file"}).Named("mf_fk1")
	statement := DeleteOrphansStatement("media_file", fk)
	assert.Equal(t, DeleteOrphans, statement.Kind)
	assert.Equal(t,
		"DELETE FROM `media_file` WHERE (`m_id`, `m_file`) NOT IN (SELECT `m_id`, `m_file` FROM `media`) AND `m_id` IS NOT NULL AND `m_file` IS NOT NULL",
		statement.SQL,
	)
}
