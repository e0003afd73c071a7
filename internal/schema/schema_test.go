package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parentChild(t *testing.T, b Builder) Schema {
	t.Helper()
	parent, err := b.Table("parent",
		Integer("id").AutoIncrement(),
		Varchar("name", 64),
		NewPrimaryKey("id"),
		NewUniqueIndex("name"),
	)
	require.NoError(t, err)

	child, err := b.Table("child",
		Integer("id").AutoIncrement(),
		Integer("parent_id").Nullable(),
		Integer("sibling_id").Nullable(),
		NewPrimaryKey("id"),
		NewIndex("parent_id"),
		NewIndex("sibling_id"),
		NewForeignKey([]string{"parent_id"}, "parent", []string{"id"}).OnDelete(Cascade),
		NewForeignKey([]string{"sibling_id"}, "child", []string{"id"}),
	)
	require.NoError(t, err)

	s, err := b.Schema(parent, child)
	require.NoError(t, err)
	return s
}

func TestTablePartitionsAndNamesElements(t *testing.T) {
	b := NewBuilder("wt_")
	table, err := b.Table("media",
		Varchar("m_id", 20),
		NewIndex("m_file"),
		Integer("m_file"),
		NewUniqueIndex("m_id", "m_file"),
		NewPrimaryKey("m_file", "m_id"),
		NewIndex("m_id"),
		NewForeignKey([]string{"m_file"}, "gedcom", []string{"gedcom_id"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "wt_media", table.Name())

	columns := table.Columns()
	require.Len(t, columns, 2)
	assert.Equal(t, "m_id", columns[0].Name())
	assert.Equal(t, "m_file", columns[1].Name())

	plain := table.PlainIndexes()
	require.Len(t, plain, 2)
	assert.Equal(t, "wt_media_ix1", plain[0].Name())
	assert.Equal(t, []string{"m_file"}, plain[0].Columns())
	assert.Equal(t, "wt_media_ix2", plain[1].Name())

	unique := table.UniqueIndexes()
	require.Len(t, unique, 1)
	assert.Equal(t, "wt_media_ux1", unique[0].Name())

	pk, ok := table.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, PrimaryKeyName, pk.Name())

	all := table.Indexes()
	require.Len(t, all, 4)
	assert.Equal(t, KindPrimary, all[0].Kind())
	assert.Equal(t, KindUnique, all[1].Kind())
	assert.Equal(t, KindIndex, all[2].Kind())

	fks := table.ForeignKeys()
	require.Len(t, fks, 1)
	assert.Equal(t, "wt_media_fk1", fks[0].Name())
	assert.Equal(t, "wt_gedcom", fks[0].ForeignTable())
}

func TestCountersArePerTableAndPerKind(t *testing.T) {
	b := NewBuilder("")
	one := b.MustTable("one", Integer("a"), Integer("b"), NewIndex("a"), NewUniqueIndex("b"), NewIndex("b"))
	two := b.MustTable("two", Integer("a"), NewIndex("a"))

	assert.Equal(t, "one_ix1", one.PlainIndexes()[0].Name())
	assert.Equal(t, "one_ix2", one.PlainIndexes()[1].Name())
	assert.Equal(t, "one_ux1", one.UniqueIndexes()[0].Name())
	assert.Equal(t, "two_ix1", two.PlainIndexes()[0].Name())
}

func TestExplicitNamesArePrefixed(t *testing.T) {
	b := NewBuilder("x_")
	table := b.MustTable("t",
		Integer("a"),
		Integer("b"),
		NewIndex("a").Named("by_a"),
		NewIndex("b"),
		NewForeignKey([]string{"a"}, "u", []string{"id"}).Named("t_to_u"),
	)
	assert.Equal(t, "x_by_a", table.PlainIndexes()[0].Name())
	assert.Equal(t, "x_t_ix2", table.PlainIndexes()[1].Name())
	assert.Equal(t, "x_t_to_u", table.ForeignKeys()[0].Name())
}

func TestBuildersAreDeterministic(t *testing.T) {
	first := parentChild(t, NewBuilder("wt_"))
	second := parentChild(t, NewBuilder("wt_"))
	assert.Equal(t, first, second)
}

func TestUnindexedForeignKeyIsRejected(t *testing.T) {
	_, err := NewBuilder("").Table("media_file",
		Integer("id"),
		Varchar("media_id", 20),
		NewPrimaryKey("id"),
		NewForeignKey([]string{"media_id"}, "media", []string{"m_id"}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnindexedForeignKey)
	assert.Contains(t, err.Error(), "media_id")
	assert.Contains(t, err.Error(), "media_file")
}

func TestForeignKeyMustBeLeadingColumnsOfIndex(t *testing.T) {
	b := NewBuilder("")
	_, err := b.Table("t",
		Integer("a"),
		Integer("b"),
		NewIndex("b", "a"),
		NewForeignKey([]string{"a"}, "u", []string{"id"}),
	)
	assert.ErrorIs(t, err, ErrUnindexedForeignKey)

	_, err = b.Table("t",
		Integer("a"),
		Integer("b"),
		NewPrimaryKey("a", "b"),
		NewForeignKey([]string{"a"}, "u", []string{"id"}),
	)
	assert.NoError(t, err)

	_, err = b.Table("t",
		Integer("a"),
		Integer("b"),
		NewUniqueIndex("a", "b"),
		NewForeignKey([]string{"a", "b"}, "u", []string{"x", "y"}),
	)
	assert.NoError(t, err)
}

func TestForeignKeyArityIsRejected(t *testing.T) {
	_, err := NewBuilder("").Table("t",
		Integer("a"),
		Integer("b"),
		NewIndex("a", "b"),
		NewForeignKey([]string{"a", "b"}, "u", []string{"id"}),
	)
	assert.ErrorIs(t, err, ErrForeignKeyArity)

	_, err = NewBuilder("").Table("t",
		Integer("a"),
		NewForeignKey(nil, "u", nil),
	)
	assert.ErrorIs(t, err, ErrForeignKeyArity)
}

func TestUnknownAndDuplicateColumns(t *testing.T) {
	_, err := NewBuilder("").Table("t", Integer("a"), NewIndex("missing"))
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = NewBuilder("").Table("t", Integer("a"), Integer("A"))
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewBuilder("").Table("t", Integer("a"), NewPrimaryKey("a"), NewPrimaryKey("a"))
	assert.ErrorIs(t, err, ErrDuplicatePrimaryKey)
}

func TestDuplicateTablesAreRejected(t *testing.T) {
	b := NewBuilder("")
	_, err := b.Schema(b.MustTable("t", Integer("a")), b.MustTable("t", Integer("b")))
	assert.ErrorIs(t, err, ErrDuplicateTable)
}

func TestDropTable(t *testing.T) {
	s := parentChild(t, NewBuilder("wt_"))

	dropped := s.DropTable("wt_child")
	assert.Equal(t, []string{"wt_parent"}, dropped.TableNames())
	assert.False(t, dropped.HasTable("wt_child"))

	// the original is untouched
	assert.Equal(t, []string{"wt_parent", "wt_child"}, s.TableNames())

	same := s.DropTable("wt_obsolete")
	assert.Equal(t, s, same)
}

func TestDropForeignKeys(t *testing.T) {
	s := parentChild(t, NewBuilder(""))
	stripped := s.DropForeignKeys()

	for _, table := range stripped.Tables() {
		assert.Empty(t, table.ForeignKeys(), table.Name())
		original, ok := s.Table(table.Name())
		require.True(t, ok)
		assert.Equal(t, original.Columns(), table.Columns())
		assert.Equal(t, original.Indexes(), table.Indexes())
	}

	child, _ := s.Table("child")
	assert.Len(t, child.ForeignKeys(), 2)
}

func TestDropColumn(t *testing.T) {
	b := NewBuilder("wt_")
	table := b.MustTable("child",
		Integer("id").AutoIncrement(),
		Integer("parent_id"),
		Varchar("label", 32),
		NewPrimaryKey("id"),
		NewIndex("parent_id"),
		NewForeignKey([]string{"parent_id"}, "parent", []string{"id"}),
	)

	dropped, err := table.DropColumn("label")
	require.NoError(t, err)
	_, ok := dropped.Column("label")
	assert.False(t, ok)
	assert.Len(t, dropped.Columns(), 2)
	assert.Equal(t, table.Indexes(), dropped.Indexes())
	assert.Equal(t, table.ForeignKeys(), dropped.ForeignKeys())

	// the original is untouched
	_, ok = table.Column("label")
	assert.True(t, ok)
	assert.Len(t, table.Columns(), 3)

	_, err = table.DropColumn("parent_id")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	same, err := table.DropColumn("missing")
	require.NoError(t, err)
	assert.Equal(t, table, same)
}

func TestValidate(t *testing.T) {
	s := parentChild(t, NewBuilder(""))
	assert.NoError(t, s.Validate())

	b := NewBuilder("")
	orphan, err := b.Schema(b.MustTable("t",
		Integer("a"),
		NewIndex("a"),
		NewForeignKey([]string{"a"}, "nowhere", []string{"id"}),
	))
	require.NoError(t, err)
	assert.ErrorIs(t, orphan.Validate(), ErrUnknownTable)

	badColumn, err := b.Schema(
		b.MustTable("u", Integer("id")),
		b.MustTable("t", Integer("a"), NewIndex("a"), NewForeignKey([]string{"a"}, "u", []string{"nope"})),
	)
	require.NoError(t, err)
	assert.ErrorIs(t, badColumn.Validate(), ErrUnknownColumn)
}

func TestForeignKeyCycles(t *testing.T) {
	b := NewBuilder("")
	s, err := b.Schema(
		b.MustTable("a", Integer("id"), Integer("b_id"), NewPrimaryKey("id"), NewIndex("b_id"),
			NewForeignKey([]string{"b_id"}, "b", []string{"id"})),
		b.MustTable("b", Integer("id"), Integer("a_id"), NewPrimaryKey("id"), NewIndex("a_id"),
			NewForeignKey([]string{"a_id"}, "a", []string{"id"})),
		b.MustTable("c", Integer("id"), Integer("c_id"), NewPrimaryKey("id"), NewIndex("c_id"),
			NewForeignKey([]string{"c_id"}, "c", []string{"id"})),
	)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, s.ForeignKeyCycles())

	assert.Empty(t, parentChild(t, b).ForeignKeyCycles())
}

func TestMarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(parentChild(t, NewBuilder("wt_")))
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "name: wt_child")
	assert.Contains(t, text, "references: wt_parent")
	assert.Contains(t, text, "on_delete: CASCADE")
	assert.Contains(t, text, "name: wt_parent_ux1")
}
