package repair

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/wt-schema-repair/internal/ddl"
	"github.com/vitebski/wt-schema-repair/internal/schema"
)

// SupportedSchemaVersion is the only application schema version the repair knows how to handle
const SupportedSchemaVersion = 45

var (
	// ErrVersionMismatch is returned before anything is changed when the schema version is not supported
	ErrVersionMismatch = errors.New("unsupported schema version")
	// ErrUnprefixedObsoleteTables is returned when tables would be dropped from a database without a table prefix
	ErrUnprefixedObsoleteTables = errors.New("refusing to drop tables without a table prefix")
)

// State is a step of a repair run
type State int

const (
	StateVersionCheck State = iota
	StateIntrospectLive
	StatePruneObsoleteTables
	StateDiff
	StateClassify
	StatePurgeOrphans
	StateExecute
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateVersionCheck:
		return "version check"
	case StateIntrospectLive:
		return "introspect live schema"
	case StatePruneObsoleteTables:
		return "prune obsolete tables"
	case StateDiff:
		return "diff"
	case StateClassify:
		return "classify"
	case StatePurgeOrphans:
		return "purge orphans"
	case StateExecute:
		return "execute"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Introspector reads the schema of the live database
type Introspector interface {
	Introspect() (schema.Schema, error)
}

// Differ computes the statements that turn live into target
type Differ interface {
	Diff(live, target schema.Schema) ([]ddl.Statement, error)
}

// Executor runs one statement against the live database
type Executor interface {
	ExecuteStatement(query string, params ...interface{}) (int64, error)
}

// Reporter is told about every statement before it is sent, and about the outcome of the run
type Reporter interface {
	Statement(index, total int, statement ddl.Statement)
	Summary(result Result)
}

// StatementError is returned when a statement fails. Statements before it stay applied.
type StatementError struct {
	Index     int
	Total     int
	Statement ddl.Statement
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d of %d failed: %s: %v", e.Index, e.Total, e.Statement.SQL, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Options tune a repair run
type Options struct {
	// SchemaVersion is the version the application expects, checked against SupportedSchemaVersion
	SchemaVersion int
	// KeepObsoleteTables leaves tables that are not part of the target schema in the database
	KeepObsoleteTables bool
	// Prefix is the table prefix of the installation. Without one every table in the database is
	// introspected, so obsolete tables are only dropped when KeepObsoleteTables is set explicitly.
	Prefix string
}

// Plan is the ordered work of a repair run
type Plan struct {
	Phases         Phases
	Purges         []ddl.Statement
	ObsoleteTables []string
}

// Statements returns foreign key drops, changes, orphan purges and foreign key additions, in that order
func (p Plan) Statements() []ddl.Statement {
	return p.Phases.Ordered(p.Purges)
}

// Empty reports whether the live schema already matches the target
func (p Plan) Empty() bool {
	return p.Phases.Len() == 0
}

// Result describes a finished repair run
type Result struct {
	State      State
	Applied    []ddl.Statement
	Total      int
	RowsPurged int64
	Duration   time.Duration
	Err        error
}

// Repairer brings a live database schema in line with a target schema
type Repairer struct {
	Target       schema.Schema
	Introspector Introspector
	Differ       Differ
	Executor     Executor
	Reporter     Reporter
	Options      Options
	Logger       *logrus.Logger

	state State
}

// NewRepairer creates a new repairer
func NewRepairer(target schema.Schema, introspector Introspector, differ Differ, executor Executor, reporter Reporter, options Options, logger *logrus.Logger) *Repairer {
	return &Repairer{
		Target:       target,
		Introspector: introspector,
		Differ:       differ,
		Executor:     executor,
		Reporter:     reporter,
		Options:      options,
		Logger:       logger,
	}
}

// State returns the step the last run reached
func (r *Repairer) State() State { return r.state }

func (r *Repairer) enter(state State) {
	r.state = state
	r.Logger.Debugf("Repair state: %s", state)
}

// Plan computes the statements a repair would run without changing the database
func (r *Repairer) Plan() (Plan, error) {
	r.enter(StateVersionCheck)
	if r.Options.SchemaVersion != SupportedSchemaVersion {
		r.state = StateFailed
		return Plan{}, fmt.Errorf("%w: this repair only works with schema version %d, found %d",
			ErrVersionMismatch, SupportedSchemaVersion, r.Options.SchemaVersion)
	}

	r.enter(StateIntrospectLive)
	live, err := r.Introspector.Introspect()
	if err != nil {
		r.state = StateFailed
		return Plan{}, fmt.Errorf("introspect live schema: %w", err)
	}

	r.enter(StatePruneObsoleteTables)
	var plan Plan
	var obsolete []schema.Table
	for _, table := range live.Tables() {
		if r.Target.HasTable(table.Name()) {
			continue
		}
		obsolete = append(obsolete, table)
		plan.ObsoleteTables = append(plan.ObsoleteTables, table.Name())
		live = live.DropTable(table.Name())
	}
	if len(obsolete) > 0 {
		r.Logger.Infof("Found %d tables that are not part of the schema", len(obsolete))
		if r.Options.Prefix == "" && !r.Options.KeepObsoleteTables {
			r.state = StateFailed
			return Plan{}, fmt.Errorf("%w: %s may belong to other applications, keep obsolete tables or set a prefix",
				ErrUnprefixedObsoleteTables, strings.Join(plan.ObsoleteTables, ", "))
		}
	}

	r.enter(StateDiff)
	statements, err := r.Differ.Diff(live, r.Target)
	if err != nil {
		r.state = StateFailed
		return Plan{}, fmt.Errorf("diff schemas: %w", err)
	}
	if !r.Options.KeepObsoleteTables {
		for _, table := range obsolete {
			for _, fk := range table.ForeignKeys() {
				statements = append(statements, ddl.DropForeignKeyStatement(table.Name(), fk.Name()))
			}
			statements = append(statements, ddl.DropTableStatement(table.Name()))
		}
	}

	r.enter(StateClassify)
	plan.Phases = Classify(statements)
	r.Logger.Debugf("Classified %d foreign key drops, %d changes, %d foreign key additions",
		len(plan.Phases.DropForeignKeys), len(plan.Phases.Changes), len(plan.Phases.AddForeignKeys))

	if len(plan.Phases.AddForeignKeys) > 0 {
		r.enter(StatePurgeOrphans)
		plan.Purges = OrphanPurges(r.Target)
	}

	return plan, nil
}

// Repair plans and then executes the statements one at a time. The first failing statement stops the
// run and is returned as a *StatementError.
func (r *Repairer) Repair() (Result, error) {
	started := time.Now()
	result := Result{}

	finish := func(err error) (Result, error) {
		result.State = r.state
		result.Err = err
		result.Duration = time.Since(started)
		if r.Reporter != nil {
			r.Reporter.Summary(result)
		}
		return result, err
	}

	plan, err := r.Plan()
	if err != nil {
		r.Logger.Errorf("Repair failed during %s: %v", r.state, err)
		r.state = StateFailed
		return finish(err)
	}

	r.enter(StateExecute)
	statements := plan.Statements()
	result.Total = len(statements)
	if len(statements) == 0 {
		r.Logger.Info("Database schema is up to date")
	}

	for i, statement := range statements {
		if r.Reporter != nil {
			r.Reporter.Statement(i+1, len(statements), statement)
		}

		affected, err := r.Executor.ExecuteStatement(statement.SQL)
		if err != nil {
			r.Logger.Errorf("Error executing statement %d of %d: %s: %v", i+1, len(statements), statement.SQL, err)
			r.state = StateFailed
			return finish(&StatementError{Index: i + 1, Total: len(statements), Statement: statement, Err: err})
		}

		result.Applied = append(result.Applied, statement)
		if statement.Kind == ddl.DeleteOrphans {
			result.RowsPurged += affected
			if affected > 0 {
				r.Logger.Infof("Deleted %d rows from %s with invalid references", affected, statement.Table)
			}
		}
	}

	r.enter(StateDone)
	return finish(nil)
}
