package ddl

import (
	"strings"
)

// Kind tags what a statement does to the database
type Kind int

const (
	Other Kind = iota
	CreateTable
	DropTable
	AddColumn
	ModifyColumn
	DropColumn
	AddIndex
	DropIndex
	AddPrimaryKey
	DropPrimaryKey
	AddForeignKey
	DropForeignKey
	DeleteOrphans
)

func (k Kind) String() string {
	switch k {
	case CreateTable:
		return "create table"
	case DropTable:
		return "drop table"
	case AddColumn:
		return "add column"
	case ModifyColumn:
		return "modify column"
	case DropColumn:
		return "drop column"
	case AddIndex:
		return "add index"
	case DropIndex:
		return "drop index"
	case AddPrimaryKey:
		return "add primary key"
	case DropPrimaryKey:
		return "drop primary key"
	case AddForeignKey:
		return "add foreign key"
	case DropForeignKey:
		return "drop foreign key"
	case DeleteOrphans:
		return "delete orphans"
	}
	return "other"
}

// Phase is the position of a statement class in the execution order
type Phase int

const (
	PhaseDropForeignKeys Phase = iota + 1
	PhaseChanges
	PhaseAddForeignKeys
)

func (p Phase) String() string {
	switch p {
	case PhaseDropForeignKeys:
		return "drop foreign keys"
	case PhaseChanges:
		return "changes"
	case PhaseAddForeignKeys:
		return "add foreign keys"
	}
	return "unknown"
}

// Phase returns the phase a statement of this kind belongs to. Only foreign key drops and adds are
// ordering sensitive, everything else is a change.
func (k Kind) Phase() Phase {
	switch k {
	case DropForeignKey:
		return PhaseDropForeignKeys
	case AddForeignKey:
		return PhaseAddForeignKeys
	}
	return PhaseChanges
}

// Statement is one schema change. SQL is the text sent to the database.
type Statement struct {
	Kind  Kind
	Table string
	Name  string
	SQL   string
}

func (s Statement) String() string { return s.SQL }

// Parse builds a statement from raw text produced elsewhere, classifying it by content: any text
// containing DROP FOREIGN KEY drops a constraint, any other text mentioning FOREIGN KEY adds one.
func Parse(sql string) Statement {
	upper := strings.ToUpper(sql)
	switch {
	case strings.Contains(upper, "DROP FOREIGN KEY"):
		return Statement{Kind: DropForeignKey, SQL: sql}
	case strings.Contains(upper, "FOREIGN KEY"):
		return Statement{Kind: AddForeignKey, SQL: sql}
	case strings.HasPrefix(strings.TrimSpace(upper), "DELETE"):
		return Statement{Kind: DeleteOrphans, SQL: sql}
	}
	return Statement{Kind: Other, SQL: sql}
}

// ParseAll parses each raw statement, skipping blank ones
func ParseAll(queries []string) []Statement {
	statements := make([]Statement, 0, len(queries))
	for _, query := range queries {
		if strings.TrimSpace(query) == "" {
			continue
		}
		statements = append(statements, Parse(query))
	}
	return statements
}
