package lang

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Record is one collection item: field name to raw value. Field names are
// lower-case.
type Record map[string]string

// WordPair is a singular/plural grammar entry declared by a collection.
// Key is the context name the chosen form is stored under.
type WordPair struct {
	Key      string
	Singular string
	Plural   string
}

// Input is what an [Accessor] reads from.
type Input struct {
	Data     *Data
	Vars     *Vars
	Maturity int
}

// Reference returns the date ages are computed at.
func (in Input) Reference() time.Time {
	if in.Data == nil || in.Data.ReferenceDate.IsZero() {
		return time.Now()
	}

	return in.Data.ReferenceDate
}

// Accessor produces the items of a collection in source order.
type Accessor func(in Input) ([]Record, error)

// Collection describes a named loop source.
//
// Loop bodies address item fields as Prefix + upper-case field name
// ("ACCOUNT_" + "NAME"); Prefix + "INDEX" is the 1-based item position.
// When is an optional per-item filter evaluated against the item's fields.
type Collection struct {
	Name     string
	Prefix   string
	Fields   []string
	Grammar  []WordPair
	Accessor Accessor
	When     Node
}

// Registry maps collection names to their descriptors, in registration
// order. Registration order is grammar precedence.
type Registry struct {
	order  []*Collection
	byName map[string]*Collection
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Collection)}
}

// Register adds c. Names are case-insensitive and must be unique.
func (r *Registry) Register(c Collection) error {
	key := strings.ToLower(c.Name)

	if _, ok := r.byName[key]; ok {
		return ErrDuplicateCollection.With(slog.String("collection", c.Name))
	}

	c.Prefix = strings.ToUpper(c.Prefix)
	r.order = append(r.order, &c)
	r.byName[key] = &c

	return nil
}

// Lookup returns the collection registered under name.
func (r *Registry) Lookup(name string) (*Collection, bool) {
	if r == nil {
		return nil, false
	}

	c, ok := r.byName[strings.ToLower(name)]

	return c, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	names := make([]string, len(r.order))
	for i, c := range r.order {
		names[i] = c.Name
	}

	return names
}

// Items is a collection resolved for one request, with translated values.
type Items struct {
	*Collection
	Records []Record
}

// Collections are the resolved collections of one request, in registry
// order. Read-only once built.
type Collections struct {
	order  []*Items
	byName map[string]*Items
}

// Get returns the resolved items of the named collection.
func (cs *Collections) Get(name string) (*Items, bool) {
	if cs == nil {
		return nil, false
	}

	it, ok := cs.byName[strings.ToLower(name)]

	return it, ok
}

// All returns every resolved collection in registry order.
func (cs *Collections) All() []*Items {
	if cs == nil {
		return nil
	}

	return cs.order
}

// Resolve runs every accessor against in and translates the item values.
// An accessor that fails yields an empty collection and a warning.
func (r *Registry) Resolve(in Input, tr *Translator) (*Collections, []Warning) {
	cs := &Collections{byName: make(map[string]*Items)}

	if r == nil {
		return cs, nil
	}

	var warns []Warning

	for _, c := range r.order {
		records, err := c.Accessor(in)
		if err != nil {
			warns = append(warns, Warning{
				Pass:    PassCollection,
				Message: err.Error(),
				Tag:     c.Name,
				Offset:  -1,
			})

			records = nil
		}

		if c.When != nil {
			records = filterRecords(records, c.When)
		}

		for _, rec := range records {
			tr.Translate(rec, in)
		}

		it := &Items{Collection: c, Records: records}
		cs.order = append(cs.order, it)
		cs.byName[strings.ToLower(c.Name)] = it
	}

	return cs, warns
}

func filterRecords(records []Record, when Node) []Record {
	kept := records[:0:0]

	for _, rec := range records {
		if Evaluate(when, NewVars(rec)) {
			kept = append(kept, rec)
		}
	}

	return kept
}

// ChildrenAccessor lists every child of the case.
func ChildrenAccessor(in Input) ([]Record, error) {
	if in.Data == nil {
		return nil, nil
	}

	ref := in.Reference()
	records := make([]Record, 0, len(in.Data.Children))

	for _, c := range in.Data.Children {
		rec := Record{
			"id":         c.ID,
			"name":       c.Name(),
			"first_name": c.FirstName,
			"last_name":  c.LastName,
			"gender":     c.Gender,
			"minor":      strconv.FormatBool(c.IsMinor(ref, in.Maturity)),
		}

		if !c.BirthDate.IsZero() {
			rec["birth_date"] = c.BirthDate.Format(time.DateOnly)
		}

		if age, ok := c.Age(ref); ok {
			rec["age"] = strconv.Itoa(age)
		}

		records = append(records, rec)
	}

	return records, nil
}

// PartiesAccessor lists every party of the case.
func PartiesAccessor(in Input) ([]Record, error) {
	if in.Data == nil {
		return nil, nil
	}

	records := make([]Record, 0, len(in.Data.Parties))

	for _, p := range in.Data.Parties {
		records = append(records, Record{
			"id":         p.ID,
			"role":       p.Role,
			"name":       p.Name(),
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"gender":     p.Gender,
		})
	}

	return records, nil
}

// JSONAccessor reads the items from a context field holding a JSON array of
// objects. A missing or blank field is an empty collection.
func JSONAccessor(field string) Accessor {
	return func(in Input) ([]Record, error) {
		raw := ""

		if in.Vars != nil {
			raw = in.Vars.Get(field)
		} else if in.Data != nil {
			raw = NewVars(in.Data.Vars).Get(field)
		}

		return decodeRecords(field, raw)
	}
}

func decodeRecords(field, raw string) ([]Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var items []map[string]json.RawMessage

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&items); err != nil {
		return nil, ErrCollectionDecode.Wrap(err).
			With(slog.String("field", field))
	}

	records := make([]Record, 0, len(items))

	for _, item := range items {
		rec := make(Record, len(item))

		for k, v := range item {
			rec[strings.ToLower(k)] = jsonScalar(v)
		}

		records = append(records, rec)
	}

	return records, nil
}

// jsonScalar renders a JSON value as context text: strings unquoted,
// numbers and booleans as written, null as empty, anything else compacted.
func jsonScalar(v json.RawMessage) string {
	v = bytes.TrimSpace(v)

	switch {
	case len(v) == 0, bytes.Equal(v, []byte("null")):
		return ""

	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}

	case v[0] == '{' || v[0] == '[':
		var b bytes.Buffer
		if err := json.Compact(&b, v); err == nil {
			return b.String()
		}
	}

	return string(v)
}

// JSONCollection describes a collection stored as a JSON array in the
// context field of the same name.
func JSONCollection(name, prefix string, fields []string, grammar ...WordPair) Collection {
	return Collection{
		Name:     name,
		Prefix:   prefix,
		Fields:   fields,
		Grammar:  grammar,
		Accessor: JSONAccessor(name),
	}
}

// DefaultRegistry returns the built-in collections: Children,
// MinorChildren, Parties, and the JSON collections Accounts, Assets and
// Debts.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, c := range []Collection{
		{
			Name:     "Children",
			Prefix:   "CHILD_",
			Fields:   []string{"id", "name", "first_name", "last_name", "gender", "birth_date", "age"},
			Accessor: ChildrenAccessor,
		},
		{
			Name:     "MinorChildren",
			Prefix:   "MINOR_",
			Fields:   []string{"id", "name", "first_name", "last_name", "gender", "birth_date", "age"},
			Accessor: ChildrenAccessor,
			When:     &Leaf{Field: "minor", Op: OpEqual, Value: "true"},
		},
		{
			Name:     "Parties",
			Prefix:   "PARTY_",
			Fields:   []string{"id", "role", "name", "first_name", "last_name", "gender"},
			Grammar:  []WordPair{{Key: "partij/partijen", Singular: "partij", Plural: "partijen"}},
			Accessor: PartiesAccessor,
		},
		JSONCollection("Accounts", "ACCOUNT_",
			[]string{"name", "type", "number", "holder", "bank", "balance"},
			WordPair{Key: "rekening/rekeningen", Singular: "rekening", Plural: "rekeningen"},
		),
		JSONCollection("Assets", "ASSET_",
			[]string{"description", "type", "value", "owner", "allocation"},
			WordPair{Key: "vermogensbestanddeel/vermogensbestanddelen",
				Singular: "vermogensbestanddeel", Plural: "vermogensbestanddelen"},
		),
		JSONCollection("Debts", "DEBT_",
			[]string{"description", "type", "amount", "creditor", "debtor", "allocation"},
			WordPair{Key: "schuld/schulden", Singular: "schuld", Plural: "schulden"},
		),
	} {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}

	return r
}
