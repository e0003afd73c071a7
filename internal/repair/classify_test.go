package repair

import (
	"fmt"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/wt-schema-repair/internal/ddl"
)

func TestClassifyText(t *testing.T) {
	phases := ClassifyText([]string{
		"ALTER TABLE wt_media ADD CONSTRAINT wt_media_fk1 FOREIGN KEY (m_file) REFERENCES wt_gedcom (gedcom_id)",
		"ALTER TABLE wt_media DROP FOREIGN KEY FK_1",
		"CREATE INDEX wt_media_ix1 ON wt_media (m_file)",
		"",
		"alter table wt_link drop foreign key FK_2",
		"ALTER TABLE wt_link CHANGE l_from l_from VARCHAR(20) NOT NULL",
	})

	assert.Equal(t, []string{
		"ALTER TABLE wt_media DROP FOREIGN KEY FK_1",
		"alter table wt_link drop foreign key FK_2",
	}, sqlOf(phases.DropForeignKeys))
	assert.Equal(t, []string{
		"CREATE INDEX wt_media_ix1 ON wt_media (m_file)",
		"ALTER TABLE wt_link CHANGE l_from l_from VARCHAR(20) NOT NULL",
	}, sqlOf(phases.Changes))
	assert.Equal(t, []string{
		"ALTER TABLE wt_media ADD CONSTRAINT wt_media_fk1 FOREIGN KEY (m_file) REFERENCES wt_gedcom (gedcom_id)",
	}, sqlOf(phases.AddForeignKeys))
	assert.Equal(t, 5, phases.Len())
}

func TestOrderedPlacesPurgesBeforeForeignKeys(t *testing.T) {
	phases := Phases{
		DropForeignKeys: []ddl.Statement{{Kind: ddl.DropForeignKey, SQL: "drop fk"}},
		Changes:         []ddl.Statement{{Kind: ddl.ModifyColumn, SQL: "modify"}},
		AddForeignKeys:  []ddl.Statement{{Kind: ddl.AddForeignKey, SQL: "add fk"}},
	}
	purges := []ddl.Statement{{Kind: ddl.DeleteOrphans, SQL: "delete"}}

	assert.Equal(t, []string{"drop fk", "modify", "delete", "add fk"}, sqlOf(phases.Ordered(purges)))
}

// Every statement lands in exactly one bucket and relative order inside a bucket is kept
func TestClassifyPartitionsPreservingOrder(t *testing.T) {
	f := faker.New()
	templates := []string{
		"ALTER TABLE `%s` DROP FOREIGN KEY `%s`",
		"ALTER TABLE `%s` ADD COLUMN `%s` int NOT NULL",
		"ALTER TABLE `%s` ADD CONSTRAINT `%s` FOREIGN KEY (`a`) REFERENCES `p` (`id`)",
	}

	for run := 0; run < 50; run++ {
		var input []string
		var expected [3][]string
		n := f.IntBetween(0, 40)
		for i := 0; i < n; i++ {
			phase := f.IntBetween(0, 2)
			sql := fmt.Sprintf(templates[phase], f.Lorem().Word(), fmt.Sprintf("%s_%d", f.Lorem().Word(), i))
			input = append(input, sql)
			expected[phase] = append(expected[phase], sql)
		}

		phases := ClassifyText(input)
		require.Equal(t, len(input), phases.Len())
		assert.Equal(t, expected[0], sqlOf(phases.DropForeignKeys))
		assert.Equal(t, expected[1], sqlOf(phases.Changes))
		assert.Equal(t, expected[2], sqlOf(phases.AddForeignKeys))
	}
}

func sqlOf(statements []ddl.Statement) []string {
	var out []string
	for _, statement := range statements {
		out = append(out, statement.SQL)
	}
	return out
}
