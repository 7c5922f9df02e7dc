package lang

import (
	"strings"
	"time"
)

// Data is the case context assembled by upstream collaborators. Values are
// already formatted; JSON-array collection fields are stored as their JSON
// text in Vars.
type Data struct {
	Vars          map[string]string
	Children      []Child
	Parties       []Party
	Clauses       []Clause // already selected for this case
	ReferenceDate time.Time
}

// Gender is a normalized gender code.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

// ParseGender normalizes the gender codes found in case data.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man", "jongen", "boy":
		return GenderMale
	case "f", "v", "female", "vrouw", "meisje", "girl":
		return GenderFemale
	}

	return GenderUnknown
}

// Child is a child of the parties.
type Child struct {
	ID        string
	FirstName string
	LastName  string
	Gender    string
	BirthDate time.Time
}

// Name returns the display name of the child.
func (c Child) Name() string {
	return joinName(c.FirstName, c.LastName)
}

// Age returns the age in whole years at ref. The second result is false
// when the birth date is unknown.
func (c Child) Age(ref time.Time) (int, bool) {
	if c.BirthDate.IsZero() {
		return 0, false
	}

	years := ref.Year() - c.BirthDate.Year()

	if ref.Month() < c.BirthDate.Month() ||
		(ref.Month() == c.BirthDate.Month() && ref.Day() < c.BirthDate.Day()) {
		years--
	}

	return years, true
}

// IsMinor reports whether the child is younger than maturity at ref. A
// child without a birth date is treated as a minor.
func (c Child) IsMinor(ref time.Time, maturity int) bool {
	age, ok := c.Age(ref)

	return !ok || age < maturity
}

// Party is a person or organization taking part in the case.
type Party struct {
	ID        string
	Role      string
	FirstName string
	LastName  string
	Gender    string
}

// Name returns the display name of the party.
func (p Party) Name() string {
	return joinName(p.FirstName, p.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// Clause is a reusable article body selected from a clause library.
type Clause struct {
	ID    string
	Group string
	Order int
	Title string
	Body  string
}

// Document holds the template text of each region.
type Document struct {
	Body    string
	Headers []string
	Footers []string
}

// Result holds the rendered regions and what was noticed along the way.
type Result struct {
	Body        string
	Headers     []string
	Footers     []string
	Diagnostics Diagnostics
}

// Diagnostics summarizes a render.
type Diagnostics struct {
	CorrelationID string
	Warnings      []Warning // context-build warnings (collections)
	Regions       []RegionDiagnostics
}

// RegionDiagnostics are the findings for one document region.
type RegionDiagnostics struct {
	Region     string
	Unresolved Unresolved
	Warnings   []Warning
}

// Unresolved returns the unresolved tokens of every region combined.
func (d Diagnostics) Unresolved() Unresolved {
	u := Unresolved{}

	for _, r := range d.Regions {
		u.Add(r.Unresolved)
	}

	return u
}

// AllWarnings returns the context-build warnings followed by each region's.
func (d Diagnostics) AllWarnings() []Warning {
	out := append([]Warning(nil), d.Warnings...)

	for _, r := range d.Regions {
		out = append(out, r.Warnings...)
	}

	return out
}

// Clean reports whether nothing was left unresolved and nothing was warned.
func (d Diagnostics) Clean() bool {
	return d.Unresolved().Total() == 0 && len(d.AllWarnings()) == 0
}
