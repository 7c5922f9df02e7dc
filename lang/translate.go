package lang

import (
	"strings"
	"unicode"
)

// Translator turns raw collection item values into display text before
// they are substituted into loop bodies.
type Translator struct {
	// Enums maps a field name to its code table (code -> display text).
	// Codes are matched case-insensitively.
	Enums map[string]map[string]string

	// OtherCodes are the codes that mean "see <field>_other".
	OtherCodes []string

	// IDFields hold identifiers of a party or child; they are replaced by
	// that person's name.
	IDFields []string

	// AccountFields hold account numbers; they are upper-cased and grouped
	// in blocks of four.
	AccountFields []string
}

// DefaultTranslator returns the code tables used by the built-in
// collections.
func DefaultTranslator() *Translator {
	return &Translator{
		Enums: map[string]map[string]string{
			"type": {
				"checking":   "betaalrekening",
				"savings":    "spaarrekening",
				"investment": "beleggingsrekening",
				"house":      "woning",
				"car":        "auto",
				"mortgage":   "hypotheek",
				"loan":       "lening",
				"study":      "studieschuld",
				"other":      "overig",
			},
			"allocation": {
				"party1": "toegedeeld aan partij 1",
				"party2": "toegedeeld aan partij 2",
				"split":  "gelijk verdeeld",
				"sell":   "te verkopen",
			},
			"role": {
				"party1":   "partij 1",
				"party2":   "partij 2",
				"lawyer":   "advocaat",
				"mediator": "mediator",
			},
			"gender": {
				"m": "man",
				"f": "vrouw",
				"v": "vrouw",
			},
		},
		OtherCodes:    []string{"other", "overig", "anders"},
		IDFields:      []string{"holder", "owner", "debtor", "party", "party_id", "child_id"},
		AccountFields: []string{"number", "iban", "account_number"},
	}
}

// Translate rewrites the values of rec in place.
func (t *Translator) Translate(rec Record, in Input) {
	if t == nil {
		return
	}

	for field, value := range rec {
		rec[field] = t.value(field, value, rec, in)
	}
}

func (t *Translator) value(field, value string, rec Record, in Input) string {
	if strings.TrimSpace(value) == "" {
		return value
	}

	if containsFold(t.OtherCodes, value) {
		if other := strings.TrimSpace(rec[field+"_other"]); other != "" {
			return other
		}
	}

	if table, ok := t.Enums[field]; ok {
		for code, display := range table {
			if strings.EqualFold(code, strings.TrimSpace(value)) {
				return display
			}
		}
	}

	if containsFold(t.IDFields, field) {
		if name, ok := personName(in.Data, value); ok {
			return name
		}
	}

	if containsFold(t.AccountFields, field) {
		return groupAccount(value)
	}

	return value
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)

	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}

	return false
}

// personName resolves a party or child identifier to a display name.
func personName(data *Data, id string) (string, bool) {
	if data == nil {
		return "", false
	}

	id = strings.TrimSpace(id)

	for _, p := range data.Parties {
		if p.ID != "" && strings.EqualFold(p.ID, id) {
			return p.Name(), true
		}
	}

	for _, c := range data.Children {
		if c.ID != "" && strings.EqualFold(c.ID, id) {
			return c.Name(), true
		}
	}

	return "", false
}

// groupAccount formats an account number as upper-case blocks of four:
// "nl91abna0417164300" becomes "NL91 ABNA 0417 1643 00".
func groupAccount(s string) string {
	var compact []rune

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			compact = append(compact, unicode.ToUpper(r))
		}
	}

	var b strings.Builder

	for i, r := range compact {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}

		b.WriteRune(r)
	}

	return b.String()
}
