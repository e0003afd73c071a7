// Package webtrees declares the database schema of the webtrees genealogy application.
package webtrees

import (
	"fmt"

	"github.com/vitebski/wt-schema-repair/internal/schema"
)

// SchemaVersion is the application schema version the declaration describes
const SchemaVersion = 45

// DefaultPrefix is the table prefix of a default installation
const DefaultPrefix = "wt_"

type declaration struct {
	name     string
	elements []schema.Element
}

// Schema builds the target schema with every table and constraint name prefixed
func Schema(prefix string) (schema.Schema, error) {
	b := schema.NewBuilder(prefix)

	tables := make([]schema.Table, 0, len(declarations))
	for _, d := range declarations {
		table, err := b.Table(d.name, d.elements...)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("webtrees schema: %w", err)
		}
		tables = append(tables, table)
	}
	return b.Schema(tables...)
}

func references(column, table, foreign string) schema.ForeignKey {
	return schema.NewForeignKey([]string{column}, table, []string{foreign})
}

func xref(name string) schema.Column { return schema.Varchar(name, 20) }

var declarations = []declaration{
	{"gedcom", []schema.Element{
		schema.Integer("gedcom_id").AutoIncrement(),
		schema.Varchar("gedcom_name", 255),
		schema.Integer("sort_order").Default("0"),
		schema.NewPrimaryKey("gedcom_id"),
		schema.NewUniqueIndex("gedcom_name"),
		schema.NewIndex("sort_order"),
	}},
	{"site_setting", []schema.Element{
		schema.Varchar("setting_name", 32),
		schema.Varchar("setting_value", 2000),
		schema.NewPrimaryKey("setting_name"),
	}},
	{"gedcom_setting", []schema.Element{
		schema.Integer("gedcom_id"),
		schema.Varchar("setting_name", 32),
		schema.Varchar("setting_value", 255),
		schema.NewPrimaryKey("gedcom_id", "setting_name"),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"user", []schema.Element{
		schema.Integer("user_id").AutoIncrement(),
		schema.Varchar("user_name", 32),
		schema.Varchar("real_name", 64),
		schema.Varchar("email", 64),
		schema.Varchar("password", 128),
		schema.NewPrimaryKey("user_id"),
		schema.NewUniqueIndex("user_name"),
		schema.NewUniqueIndex("email"),
	}},
	{"user_setting", []schema.Element{
		schema.Integer("user_id"),
		schema.Varchar("setting_name", 32),
		schema.Varchar("setting_value", 255),
		schema.NewPrimaryKey("user_id", "setting_name"),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"user_gedcom_setting", []schema.Element{
		schema.Integer("user_id"),
		schema.Integer("gedcom_id"),
		schema.Varchar("setting_name", 32),
		schema.Varchar("setting_value", 255),
		schema.NewPrimaryKey("user_id", "gedcom_id", "setting_name"),
		schema.NewIndex("gedcom_id"),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"log", []schema.Element{
		schema.Integer("log_id").AutoIncrement(),
		schema.Timestamp("log_time").Default("CURRENT_TIMESTAMP"),
		schema.NewColumn("log_type", "enum('auth','config','debug','edit','error','media','search')"),
		schema.LongText("log_message"),
		schema.Varchar("ip_address", 45),
		schema.Integer("user_id").Nullable(),
		schema.Integer("gedcom_id").Nullable(),
		schema.NewPrimaryKey("log_id"),
		schema.NewIndex("log_time"),
		schema.NewIndex("log_type"),
		schema.NewIndex("ip_address"),
		schema.NewIndex("user_id"),
		schema.NewIndex("gedcom_id"),
		references("user_id", "user", "user_id").OnDelete(schema.SetNull).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.SetNull).OnUpdate(schema.Cascade),
	}},
	{"change", []schema.Element{
		schema.Integer("change_id").AutoIncrement(),
		schema.Timestamp("change_time").Default("CURRENT_TIMESTAMP"),
		schema.NewColumn("status", "enum('accepted','pending','rejected')").Default("pending"),
		schema.Integer("gedcom_id"),
		xref("xref"),
		schema.LongText("old_gedcom"),
		schema.LongText("new_gedcom"),
		schema.Integer("user_id"),
		schema.NewPrimaryKey("change_id"),
		schema.NewIndex("gedcom_id", "status", "xref"),
		schema.NewIndex("user_id"),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"message", []schema.Element{
		schema.Integer("message_id").AutoIncrement(),
		schema.Varchar("sender", 64),
		schema.Varchar("ip_address", 45),
		schema.Integer("user_id"),
		schema.Varchar("subject", 255),
		schema.LongText("body"),
		schema.Timestamp("created").Default("CURRENT_TIMESTAMP"),
		schema.NewPrimaryKey("message_id"),
		schema.NewIndex("user_id"),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"default_resn", []schema.Element{
		schema.Integer("default_resn_id").AutoIncrement(),
		schema.Integer("gedcom_id"),
		xref("xref").Nullable(),
		schema.Varchar("tag_type", 15).Nullable(),
		schema.NewColumn("resn", "enum('none','privacy','confidential','hidden')"),
		schema.Varchar("comment", 255).Nullable(),
		schema.Timestamp("updated").Default("CURRENT_TIMESTAMP"),
		schema.NewPrimaryKey("default_resn_id"),
		schema.NewUniqueIndex("gedcom_id", "xref", "tag_type"),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"individuals", []schema.Element{
		xref("i_id"),
		schema.Integer("i_file"),
		schema.Varchar("i_rin", 20),
		schema.NewColumn("i_sex", "enum('U','M','F','X')"),
		schema.LongText("i_gedcom"),
		schema.NewPrimaryKey("i_id", "i_file"),
		schema.NewUniqueIndex("i_file", "i_id"),
		references("i_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"families", []schema.Element{
		xref("f_id"),
		schema.Integer("f_file"),
		xref("f_husb").Nullable(),
		xref("f_wife").Nullable(),
		schema.LongText("f_gedcom"),
		schema.Integer("f_numchil"),
		schema.NewPrimaryKey("f_id", "f_file"),
		schema.NewUniqueIndex("f_file", "f_id"),
		schema.NewIndex("f_husb"),
		schema.NewIndex("f_wife"),
		references("f_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"places", []schema.Element{
		schema.Integer("p_id").AutoIncrement(),
		schema.Varchar("p_place", 150),
		schema.Integer("p_parent_id").Nullable(),
		schema.Integer("p_file"),
		schema.LongText("p_std_soundex").Nullable(),
		schema.LongText("p_dm_soundex").Nullable(),
		schema.NewPrimaryKey("p_id"),
		schema.NewUniqueIndex("p_parent_id", "p_file", "p_place"),
		schema.NewIndex("p_file", "p_place"),
		references("p_parent_id", "places", "p_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("p_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"placelinks", []schema.Element{
		schema.Integer("pl_p_id"),
		xref("pl_gid"),
		schema.Integer("pl_file"),
		schema.NewPrimaryKey("pl_p_id", "pl_gid", "pl_file"),
		schema.NewIndex("pl_p_id"),
		schema.NewIndex("pl_gid"),
		schema.NewIndex("pl_file"),
		references("pl_p_id", "places", "p_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("pl_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"dates", []schema.Element{
		schema.NewColumn("d_day", "tinyint"),
		schema.Char("d_month", 5),
		schema.NewColumn("d_mon", "tinyint"),
		schema.NewColumn("d_year", "smallint"),
		schema.NewColumn("d_julianday1", "mediumint"),
		schema.NewColumn("d_julianday2", "mediumint"),
		schema.Varchar("d_fact", 15),
		xref("d_gid"),
		schema.Integer("d_file"),
		schema.NewColumn("d_type", "enum('@#DGREGORIAN@','@#DJULIAN@','@#DHEBREW@','@#DFRENCH R@','@#DHIJRI@','@#DROMAN@','@#DJALALI@')"),
		schema.NewIndex("d_day"),
		schema.NewIndex("d_month"),
		schema.NewIndex("d_mon"),
		schema.NewIndex("d_year"),
		schema.NewIndex("d_julianday1"),
		schema.NewIndex("d_julianday2"),
		schema.NewIndex("d_gid"),
		schema.NewIndex("d_file"),
		schema.NewIndex("d_type"),
		schema.NewIndex("d_fact", "d_gid"),
		references("d_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"media", []schema.Element{
		xref("m_id"),
		schema.Integer("m_file"),
		schema.LongText("m_gedcom"),
		schema.NewPrimaryKey("m_file", "m_id"),
		schema.NewUniqueIndex("m_id", "m_file"),
		references("m_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"media_file", []schema.Element{
		schema.Integer("id").AutoIncrement(),
		xref("m_id"),
		schema.Integer("m_file"),
		schema.Varchar("multimedia_file_refn", 248),
		schema.Varchar("multimedia_format", 4),
		schema.Varchar("source_media_type", 15),
		schema.Varchar("descriptive_title", 248),
		schema.NewPrimaryKey("id"),
		schema.NewIndex("m_id", "m_file"),
		schema.NewIndex("m_file", "m_id"),
		schema.NewIndex("m_file", "multimedia_file_refn"),
		schema.NewIndex("m_file", "multimedia_format"),
		schema.NewIndex("m_file", "source_media_type"),
		schema.NewIndex("m_file", "descriptive_title"),
		schema.NewForeignKey([]string{"m_file", "m_id"}, "media", []string{"m_file", "m_id"}).OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"name", []schema.Element{
		schema.Integer("n_file"),
		xref("n_id"),
		schema.Integer("n_num"),
		schema.Varchar("n_type", 15),
		schema.Varchar("n_sort", 255),
		schema.Varchar("n_full", 255),
		schema.Varchar("n_surname", 255).Nullable(),
		schema.Varchar("n_surn", 255).Nullable(),
		schema.Varchar("n_givn", 255).Nullable(),
		schema.Varchar("n_soundex_givn_std", 255).Nullable(),
		schema.Varchar("n_soundex_surn_std", 255).Nullable(),
		schema.Varchar("n_soundex_givn_dm", 255).Nullable(),
		schema.Varchar("n_soundex_surn_dm", 255).Nullable(),
		schema.NewPrimaryKey("n_id", "n_file", "n_num"),
		schema.NewIndex("n_full", "n_id", "n_file"),
		schema.NewIndex("n_surn", "n_file", "n_type", "n_id"),
		schema.NewIndex("n_givn", "n_file", "n_type", "n_id"),
		schema.NewIndex("n_file", "n_id"),
		references("n_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"other", []schema.Element{
		xref("o_id"),
		schema.Integer("o_file"),
		schema.Varchar("o_type", 15),
		schema.LongText("o_gedcom"),
		schema.NewPrimaryKey("o_id", "o_file"),
		schema.NewUniqueIndex("o_file", "o_id"),
		schema.NewIndex("o_type"),
		references("o_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"sources", []schema.Element{
		xref("s_id"),
		schema.Integer("s_file"),
		schema.Varchar("s_name", 255),
		schema.LongText("s_gedcom"),
		schema.NewPrimaryKey("s_id", "s_file"),
		schema.NewUniqueIndex("s_file", "s_id"),
		schema.NewIndex("s_name"),
		references("s_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"link", []schema.Element{
		schema.Integer("l_file"),
		xref("l_from"),
		schema.Varchar("l_type", 15),
		xref("l_to"),
		schema.NewPrimaryKey("l_from", "l_file", "l_type", "l_to"),
		schema.NewUniqueIndex("l_to", "l_file", "l_type", "l_from"),
		schema.NewIndex("l_file"),
		references("l_file", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"module", []schema.Element{
		schema.Varchar("module_name", 32),
		schema.NewColumn("status", "enum('enabled','disabled')").Default("enabled"),
		schema.Integer("tab_order").Nullable(),
		schema.Integer("menu_order").Nullable(),
		schema.Integer("sidebar_order").Nullable(),
		schema.Integer("footer_order").Nullable(),
		schema.NewPrimaryKey("module_name"),
	}},
	{"module_setting", []schema.Element{
		schema.Varchar("module_name", 32),
		schema.Varchar("setting_name", 32),
		schema.LongText("setting_value"),
		schema.NewPrimaryKey("module_name", "setting_name"),
		references("module_name", "module", "module_name").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"module_privacy", []schema.Element{
		schema.Integer("id").AutoIncrement(),
		schema.Varchar("module_name", 32),
		schema.Integer("gedcom_id"),
		schema.Varchar("interface", 255),
		schema.TinyInteger("access_level"),
		schema.NewPrimaryKey("id"),
		schema.NewUniqueIndex("gedcom_id", "module_name", "interface"),
		schema.NewUniqueIndex("module_name", "gedcom_id", "interface"),
		references("module_name", "module", "module_name").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"block", []schema.Element{
		schema.Integer("block_id").AutoIncrement(),
		schema.Integer("gedcom_id").Nullable(),
		schema.Integer("user_id").Nullable(),
		xref("xref").Nullable(),
		schema.NewColumn("location", "enum('main','side')").Nullable(),
		schema.Integer("block_order"),
		schema.Varchar("module_name", 32),
		schema.NewPrimaryKey("block_id"),
		schema.NewIndex("module_name"),
		schema.NewIndex("gedcom_id"),
		schema.NewIndex("user_id"),
		references("module_name", "module", "module_name").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"block_setting", []schema.Element{
		schema.Integer("block_id"),
		schema.Varchar("setting_name", 32),
		schema.LongText("setting_value"),
		schema.NewPrimaryKey("block_id", "setting_name"),
		references("block_id", "block", "block_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"hit_counter", []schema.Element{
		schema.Integer("gedcom_id"),
		schema.Varchar("page_name", 32),
		schema.Varchar("page_parameter", 32),
		schema.Integer("page_count"),
		schema.NewPrimaryKey("gedcom_id", "page_name", "page_parameter"),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"favorite", []schema.Element{
		schema.Integer("favorite_id").AutoIncrement(),
		schema.Integer("user_id").Nullable(),
		schema.Integer("gedcom_id"),
		xref("xref").Nullable(),
		schema.NewColumn("favorite_type", "enum('INDI','FAM','SOUR','REPO','OBJE','NOTE','URL')"),
		schema.Varchar("url", 255).Nullable(),
		schema.Varchar("title", 255).Nullable(),
		schema.Varchar("note", 1000).Nullable(),
		schema.NewPrimaryKey("favorite_id"),
		schema.NewIndex("user_id"),
		schema.NewIndex("gedcom_id", "user_id"),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"news", []schema.Element{
		schema.Integer("news_id").AutoIncrement(),
		schema.Integer("user_id").Nullable(),
		schema.Integer("gedcom_id").Nullable(),
		schema.Varchar("subject", 255),
		schema.Text("body"),
		schema.Timestamp("updated").Default("CURRENT_TIMESTAMP"),
		schema.NewPrimaryKey("news_id"),
		schema.NewIndex("user_id", "updated"),
		schema.NewIndex("gedcom_id", "updated"),
		schema.NewIndex("updated"),
		references("user_id", "user", "user_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
		references("gedcom_id", "gedcom", "gedcom_id").OnDelete(schema.Cascade).OnUpdate(schema.Cascade),
	}},
	{"session", []schema.Element{
		schema.Char("session_id", 32),
		schema.Timestamp("session_time").Default("CURRENT_TIMESTAMP"),
		schema.Integer("user_id"),
		schema.Varchar("ip_address", 45),
		schema.LongBlob("session_data"),
		schema.NewPrimaryKey("session_id"),
		schema.NewIndex("session_time"),
		schema.NewIndex("user_id", "ip_address"),
	}},
}
