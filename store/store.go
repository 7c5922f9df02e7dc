// Package store reads case data and clause libraries from PostgreSQL.
//
// The expected schema:
//
//	cases         (case_id text primary key, reference_date date)
//	case_fields   (case_id, name text, value text)
//	case_children (case_id, child_id, position int, first_name, last_name,
//	               gender text, birth_date date)
//	case_parties  (case_id, party_id, position int, role, first_name,
//	               last_name, gender text)
//	clauses       (clause_id text primary key, group_name text,
//	               sort_order int, title text, body text, condition text)
//
// The condition column holds a YAML or JSON condition document as accepted
// by [lang.ParseCondition]; NULL means the clause always applies.
package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ardnew/dossier/clause"
	"github.com/ardnew/dossier/lang"
)

// Predefined errors (sentinel values).
var (
	ErrConnect      = lang.NewError("database connection failed")
	ErrCaseNotFound = lang.NewError("case not found")
	ErrQuery        = lang.NewError("database query failed")
	ErrClause       = lang.NewError("invalid stored clause")
)

const (
	queryCase = `SELECT case_id, reference_date FROM cases WHERE case_id = $1`

	queryFields = `SELECT name, value FROM case_fields WHERE case_id = $1 ORDER BY name`

	queryChildren = `SELECT child_id, first_name, last_name, gender, birth_date
FROM case_children WHERE case_id = $1 ORDER BY position, child_id`

	queryParties = `SELECT party_id, role, first_name, last_name, gender
FROM case_parties WHERE case_id = $1 ORDER BY position, party_id`

	queryClauses = `SELECT clause_id, group_name, sort_order, title, body, condition
FROM clauses ORDER BY group_name, sort_order, clause_id`

	queryClausesIn = `SELECT clause_id, group_name, sort_order, title, body, condition
FROM clauses WHERE group_name = ANY($1) ORDER BY group_name, sort_order, clause_id`
)

// Source reads from one database handle. It is safe for concurrent use.
type Source struct {
	db *sqlx.DB
}

// New returns a Source reading from db, an open PostgreSQL handle.
func New(db *sql.DB) *Source {
	return &Source{db: sqlx.NewDb(db, "postgres")}
}

// Open connects to the PostgreSQL database at dsn.
func Open(ctx context.Context, dsn string) (*Source, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, ErrConnect.Wrap(err)
	}

	return &Source{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

type caseRow struct {
	ID            string       `db:"case_id"`
	ReferenceDate sql.NullTime `db:"reference_date"`
}

type fieldRow struct {
	Name  string         `db:"name"`
	Value sql.NullString `db:"value"`
}

type childRow struct {
	ID        string         `db:"child_id"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Gender    sql.NullString `db:"gender"`
	BirthDate sql.NullTime   `db:"birth_date"`
}

type partyRow struct {
	ID        string         `db:"party_id"`
	Role      sql.NullString `db:"role"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Gender    sql.NullString `db:"gender"`
}

type clauseRow struct {
	ID        string         `db:"clause_id"`
	Group     string         `db:"group_name"`
	Order     int            `db:"sort_order"`
	Title     sql.NullString `db:"title"`
	Body      sql.NullString `db:"body"`
	Condition sql.NullString `db:"condition"`
}

// Load reads the case identified by caseID. A NULL field value is stored
// as an empty string; a NULL reference date leaves it zero so the engine
// falls back to its clock.
func (s *Source) Load(ctx context.Context, caseID string) (*lang.Data, error) {
	attr := slog.String("case", caseID)

	var c caseRow

	if err := s.db.GetContext(ctx, &c, queryCase, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound.With(attr)
		}

		return nil, ErrQuery.Wrap(err).With(attr, slog.String("table", "cases"))
	}

	var fields []fieldRow

	if err := s.db.SelectContext(ctx, &fields, queryFields, caseID); err != nil {
		return nil, ErrQuery.Wrap(err).With(attr, slog.String("table", "case_fields"))
	}

	var children []childRow

	if err := s.db.SelectContext(ctx, &children, queryChildren, caseID); err != nil {
		return nil, ErrQuery.Wrap(err).With(attr, slog.String("table", "case_children"))
	}

	var parties []partyRow

	if err := s.db.SelectContext(ctx, &parties, queryParties, caseID); err != nil {
		return nil, ErrQuery.Wrap(err).With(attr, slog.String("table", "case_parties"))
	}

	data := &lang.Data{
		Vars:     make(map[string]string, len(fields)),
		Children: make([]lang.Child, 0, len(children)),
		Parties:  make([]lang.Party, 0, len(parties)),
	}

	if c.ReferenceDate.Valid {
		data.ReferenceDate = c.ReferenceDate.Time
	}

	for _, f := range fields {
		data.Vars[f.Name] = f.Value.String
	}

	for _, r := range children {
		child := lang.Child{
			ID:        r.ID,
			FirstName: r.FirstName.String,
			LastName:  r.LastName.String,
			Gender:    r.Gender.String,
		}

		if r.BirthDate.Valid {
			child.BirthDate = r.BirthDate.Time
		}

		data.Children = append(data.Children, child)
	}

	for _, r := range parties {
		data.Parties = append(data.Parties, lang.Party{
			ID:        r.ID,
			Role:      r.Role.String,
			FirstName: r.FirstName.String,
			LastName:  r.LastName.String,
			Gender:    r.Gender.String,
		})
	}

	return data, nil
}

// Clauses reads the clause library. With groups given, only clauses in
// those groups are read.
func (s *Source) Clauses(ctx context.Context, groups ...string) (*clause.Library, error) {
	var (
		rows []clauseRow
		err  error
	)

	if len(groups) == 0 {
		err = s.db.SelectContext(ctx, &rows, queryClauses)
	} else {
		err = s.db.SelectContext(ctx, &rows, queryClausesIn, pq.Array(groups))
	}

	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("table", "clauses"))
	}

	entries := make([]clause.Entry, 0, len(rows))

	for _, r := range rows {
		e := clause.Entry{
			ID:    r.ID,
			Group: r.Group,
			Order: r.Order,
			Title: r.Title.String,
			Body:  r.Body.String,
		}

		if cond := strings.TrimSpace(r.Condition.String); cond != "" {
			e.When, err = lang.ParseCondition([]byte(cond))
			if err != nil {
				return nil, ErrClause.Wrap(err).With(slog.String("id", r.ID))
			}
		}

		entries = append(entries, e)
	}

	return clause.New(entries...)
}
