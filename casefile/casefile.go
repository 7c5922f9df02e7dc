// Package casefile reads case data from YAML files, for rendering without a
// database.
//
//	reference_date: 2024-06-01
//	vars:
//	  Custody: joint
//	  Accounts:
//	    - number: NL01BANK0123456789
//	      holder: p1
//	children:
//	  - id: k1
//	    first_name: Sanne
//	    gender: v
//	    birth_date: 2015-03-14
//	parties:
//	  - id: p1
//	    role: applicant
//	    first_name: Eva
//
// Scalar vars become their string form. Sequences and mappings become JSON
// text, which is what the JSON collections of [lang.DefaultRegistry] read.
package casefile

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/dossier/lang"
)

// DateLayout is the layout of every date in a case file.
const DateLayout = time.DateOnly

// Predefined errors (sentinel values).
var (
	ErrDecode = lang.NewError("invalid case file")
	ErrDate   = lang.NewError("invalid date")
)

// File is the document form of a case file.
type File struct {
	ReferenceDate string         `yaml:"reference_date,omitempty"`
	Vars          map[string]any `yaml:"vars,omitempty"`
	Children      []Child        `yaml:"children,omitempty"`
	Parties       []Party        `yaml:"parties,omitempty"`
}

// Child is the document form of [lang.Child].
type Child struct {
	ID        string `yaml:"id,omitempty"`
	FirstName string `yaml:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty"`
	Gender    string `yaml:"gender,omitempty"`
	BirthDate string `yaml:"birth_date,omitempty"`
}

// Party is the document form of [lang.Party].
type Party struct {
	ID        string `yaml:"id,omitempty"`
	Role      string `yaml:"role,omitempty"`
	FirstName string `yaml:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty"`
	Gender    string `yaml:"gender,omitempty"`
}

// Read decodes the case file at path.
func Read(path string) (*lang.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	data, err := Decode(f)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}

	return data, nil
}

// Decode decodes a case file from r.
func Decode(r io.Reader) (*lang.Data, error) {
	var file File

	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &lang.Data{Vars: map[string]string{}}, nil
		}

		return nil, ErrDecode.Wrap(err)
	}

	return file.Data()
}

// Data converts the document form into case data.
func (f File) Data() (*lang.Data, error) {
	data := &lang.Data{
		Vars:     make(map[string]string, len(f.Vars)),
		Children: make([]lang.Child, 0, len(f.Children)),
		Parties:  make([]lang.Party, 0, len(f.Parties)),
	}

	var err error

	data.ReferenceDate, err = parseDate(f.ReferenceDate, "reference_date")
	if err != nil {
		return nil, err
	}

	for name, v := range f.Vars {
		data.Vars[name], err = varString(v)
		if err != nil {
			return nil, ErrDecode.Wrap(err).With(slog.String("var", name))
		}
	}

	for i, c := range f.Children {
		born, err := parseDate(c.BirthDate, "children["+strconv.Itoa(i)+"].birth_date")
		if err != nil {
			return nil, err
		}

		data.Children = append(data.Children, lang.Child{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Gender:    c.Gender,
			BirthDate: born,
		})
	}

	for _, p := range f.Parties {
		data.Parties = append(data.Parties, lang.Party(p))
	}

	return data, nil
}

func parseDate(s, path string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	// Timestamps decoded by YAML carry a time part.
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrDate.Wrap(err).With(slog.String("path", path))
	}

	return t, nil
}

func varString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case time.Time:
		return x.Format(DateLayout), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Example returns a small case file document, as written by the init
// command.
func Example() ([]byte, error) {
	return yaml.Marshal(File{
		ReferenceDate: time.Now().Format(DateLayout),
		Vars: map[string]any{
			"Custody":      "joint",
			"HasPension":   true,
			"MarriageDate": "2010-05-21",
			"Accounts": []map[string]string{
				{"number": "NL01BANK0123456789", "holder": "p1", "bank": "ING"},
			},
		},
		Children: []Child{
			{ID: "k1", FirstName: "Sanne", LastName: "Jansen", Gender: "v", BirthDate: "2015-03-14"},
		},
		Parties: []Party{
			{ID: "p1", Role: "applicant", FirstName: "Eva", LastName: "Jansen", Gender: "v"},
			{ID: "p2", Role: "respondent", FirstName: "Mark", LastName: "Jansen", Gender: "m"},
		},
	})
}
