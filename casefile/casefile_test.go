package casefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

const sample = `
reference_date: "2024-06-01"
vars:
  Custody: joint
  HasPension: true
  Children: 2
  Alimony: 512.5
  Accounts:
    - number: NL01BANK0123456789
      holder: p1
children:
  - id: k1
    first_name: Sanne
    last_name: de Vries
    gender: v
    birth_date: "2015-03-14"
  - id: k2
    first_name: Tom
parties:
  - id: p1
    role: applicant
    first_name: Eva
    last_name: Jansen
    gender: v
`

func TestDecode(t *testing.T) {
	data, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !data.ReferenceDate.Equal(want) {
		t.Errorf("ReferenceDate = %v, want %v", data.ReferenceDate, want)
	}

	for name, want := range map[string]string{
		"Custody":    "joint",
		"HasPension": "true",
		"Children":   "2",
		"Alimony":    "512.5",
	} {
		if got := data.Vars[name]; got != want {
			t.Errorf("Vars[%s] = %q, want %q", name, got, want)
		}
	}

	var accounts []map[string]string
	if err := json.Unmarshal([]byte(data.Vars["Accounts"]), &accounts); err != nil {
		t.Fatalf("Vars[Accounts] = %q is not JSON: %v", data.Vars["Accounts"], err)
	}

	if len(accounts) != 1 || accounts[0]["holder"] != "p1" {
		t.Errorf("accounts = %v", accounts)
	}

	if len(data.Children) != 2 || data.Children[0].Name() != "Sanne de Vries" {
		t.Fatalf("Children = %+v", data.Children)
	}

	if !data.Children[1].BirthDate.IsZero() {
		t.Errorf("Children[1].BirthDate = %v, want zero", data.Children[1].BirthDate)
	}

	if len(data.Parties) != 1 || data.Parties[0].Role != "applicant" {
		t.Errorf("Parties = %+v", data.Parties)
	}
}

func TestDecode_Empty(t *testing.T) {
	data, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(data.Vars) != 0 || !data.ReferenceDate.IsZero() {
		t.Errorf("Decode(\"\") = %+v, want empty", data)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not yaml", "vars: [", ErrDecode},
		{"bad reference date", `reference_date: "01-06-2024"`, ErrDate},
		{"bad birth date", "children:\n  - birth_date: \"yesterday\"\n", ErrDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExample(t *testing.T) {
	doc, err := Example()
	if err != nil {
		t.Fatalf("Example() error = %v", err)
	}

	data, err := Decode(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode(Example()) error = %v\n%s", err, doc)
	}

	if data.Vars["Custody"] != "joint" || len(data.Parties) != 2 || len(data.Children) != 1 {
		t.Errorf("Decode(Example()) = %+v", data)
	}

	if data.Children[0].BirthDate.IsZero() {
		t.Error("example child has no birth date")
	}
}
