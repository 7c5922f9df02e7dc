package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/ardnew/dossier/lang"
)

func newMock(t *testing.T) (*Source, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return New(db), mock
}

func TestLoad(t *testing.T) {
	src, mock := newMock(t)

	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	born := time.Date(2015, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryCase)).
		WithArgs("C-1").
		WillReturnRows(sqlmock.NewRows([]string{"case_id", "reference_date"}).
			AddRow("C-1", ref))

	mock.ExpectQuery(regexp.QuoteMeta(queryFields)).
		WithArgs("C-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).
			AddRow("Custody", "joint").
			AddRow("Notes", nil))

	mock.ExpectQuery(regexp.QuoteMeta(queryChildren)).
		WithArgs("C-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"child_id", "first_name", "last_name", "gender", "birth_date",
		}).
			AddRow("k1", "Sanne", "de Vries", "v", born).
			AddRow("k2", "Tom", nil, "m", nil))

	mock.ExpectQuery(regexp.QuoteMeta(queryParties)).
		WithArgs("C-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"party_id", "role", "first_name", "last_name", "gender",
		}).
			AddRow("p1", "applicant", "Eva", "Jansen", "v"))

	data, err := src.Load(t.Context(), "C-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !data.ReferenceDate.Equal(ref) {
		t.Errorf("ReferenceDate = %v, want %v", data.ReferenceDate, ref)
	}

	if data.Vars["Custody"] != "joint" {
		t.Errorf("Vars[Custody] = %q, want joint", data.Vars["Custody"])
	}

	if v, ok := data.Vars["Notes"]; !ok || v != "" {
		t.Errorf("Vars[Notes] = %q, %v, want empty and present", v, ok)
	}

	if len(data.Children) != 2 {
		t.Fatalf("Children = %d, want 2", len(data.Children))
	}

	if data.Children[0].Name() != "Sanne de Vries" || !data.Children[0].BirthDate.Equal(born) {
		t.Errorf("Children[0] = %+v", data.Children[0])
	}

	if !data.Children[1].BirthDate.IsZero() || data.Children[1].LastName != "" {
		t.Errorf("Children[1] = %+v, want zero birth date and last name", data.Children[1])
	}

	if len(data.Parties) != 1 || data.Parties[0].Role != "applicant" {
		t.Errorf("Parties = %+v", data.Parties)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	src, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryCase)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"case_id", "reference_date"}))

	_, err := src.Load(t.Context(), "missing")
	if !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("Load() error = %v, want %v", err, ErrCaseNotFound)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestLoad_QueryError(t *testing.T) {
	src, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryCase)).
		WithArgs("C-1").
		WillReturnRows(sqlmock.NewRows([]string{"case_id", "reference_date"}).
			AddRow("C-1", nil))

	mock.ExpectQuery(regexp.QuoteMeta(queryFields)).
		WithArgs("C-1").
		WillReturnError(errors.New("connection reset"))

	_, err := src.Load(t.Context(), "C-1")
	if !errors.Is(err, ErrQuery) {
		t.Errorf("Load() error = %v, want %v", err, ErrQuery)
	}
}

func TestClauses(t *testing.T) {
	src, mock := newMock(t)

	cols := []string{"clause_id", "group_name", "sort_order", "title", "body", "condition"}

	mock.ExpectQuery(regexp.QuoteMeta(queryClausesIn)).
		WithArgs(pq.Array([]string{"custody"})).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("joint", "custody", 10, "Gezamenlijk", "[[ARTICLE]] Gezamenlijk gezag.",
				`{"field": "Custody", "value": "joint"}`).
			AddRow("sole", "custody", 20, nil, "[[ARTICLE]] Eenhoofdig gezag.",
				"field: Custody\nvalue: sole\n").
			AddRow("always", "custody", 30, nil, "[[ARTICLE]] Omgang.", nil))

	lib, err := src.Clauses(t.Context(), "custody")
	if err != nil {
		t.Fatalf("Clauses failed: %v", err)
	}

	got := lib.Select(lang.NewVars(map[string]string{"Custody": "sole"}))
	if len(got) != 2 || got[0].ID != "sole" || got[1].ID != "always" {
		t.Errorf("Select() = %+v, want [sole always]", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestClauses_All(t *testing.T) {
	src, mock := newMock(t)

	cols := []string{"clause_id", "group_name", "sort_order", "title", "body", "condition"}

	mock.ExpectQuery(regexp.QuoteMeta(queryClauses)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a", "g", 1, nil, "A", nil).
			AddRow("b", "h", 1, nil, "B", nil))

	lib, err := src.Clauses(t.Context())
	if err != nil {
		t.Fatalf("Clauses failed: %v", err)
	}

	if lib.Len() != 2 {
		t.Errorf("Len() = %d, want 2", lib.Len())
	}
}

func TestClauses_BadCondition(t *testing.T) {
	src, mock := newMock(t)

	cols := []string{"clause_id", "group_name", "sort_order", "title", "body", "condition"}

	mock.ExpectQuery(regexp.QuoteMeta(queryClauses)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a", "g", 1, nil, "A", `{"field": "X", "op": "like"}`))

	_, err := src.Clauses(t.Context())
	if !errors.Is(err, ErrClause) {
		t.Errorf("Clauses() error = %v, want %v", err, ErrClause)
	}
}
