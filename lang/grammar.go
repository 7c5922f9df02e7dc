package lang

import (
	"strconv"
	"time"
)

// DefaultMaturity is the age at which a child no longer counts as a minor.
const DefaultMaturity = 18

// AllPrefix prefixes the rule keys derived from every child rather than
// only the minors.
const AllPrefix = "alle_"

// Rules are grammar entries merged into the context map: rule key to the
// agreeing word form.
type Rules map[string]string

// childForms lists the child-derived word pairs: key, singular, plural,
// and the masculine/feminine forms where the word is a pronoun.
var childForms = []struct {
	key              string
	singular, plural string
	male, female     string
}{
	{key: "kind/kinderen", singular: "kind", plural: "kinderen"},
	{key: "is/zijn", singular: "is", plural: "zijn"},
	{key: "heeft/hebben", singular: "heeft", plural: "hebben"},
	{key: "hij/zij", singular: "hij/zij", plural: "zij", male: "hij", female: "zij"},
	{key: "hem/haar", singular: "hem/haar", plural: "hen", male: "hem", female: "haar"},
	{key: "zijn/haar", singular: "zijn/haar", plural: "hun", male: "zijn", female: "haar"},
}

// BuildChildRules derives the child grammar. Base keys agree with the minor
// children (younger than maturity at ref); [AllPrefix] keys agree with all
// children. MinorChildCount and ChildCount hold the two counts.
//
// Pronouns are gendered only for a single child of known gender. No
// children gives the dual form ("hij/zij"), several the plural.
func BuildChildRules(children []Child, ref time.Time, maturity int) Rules {
	if maturity <= 0 {
		maturity = DefaultMaturity
	}

	var minors []Child

	for _, c := range children {
		if c.IsMinor(ref, maturity) {
			minors = append(minors, c)
		}
	}

	rules := Rules{
		"MinorChildCount": strconv.Itoa(len(minors)),
		"ChildCount":      strconv.Itoa(len(children)),
	}

	addChildForms(rules, "", minors)
	addChildForms(rules, AllPrefix, children)

	return rules
}

func addChildForms(rules Rules, prefix string, subset []Child) {
	gender := GenderUnknown
	if len(subset) == 1 {
		gender = ParseGender(subset[0].Gender)
	}

	for _, f := range childForms {
		form := f.plural

		switch {
		case len(subset) == 1 && f.male == "":
			form = f.singular

		case len(subset) == 1 && gender == GenderMale:
			form = f.male

		case len(subset) == 1 && gender == GenderFemale:
			form = f.female

		case len(subset) == 1 || (len(subset) == 0 && f.male != ""):
			form = f.singular
		}

		rules[prefix+f.key] = form
	}
}

// AddCollectionRules adds the word pairs of every collection with at least
// one item, singular for one item and plural for more. Collections are
// visited in registry order and the first to claim a key decides it;
// collection keys take precedence over child-derived keys already in
// rules. Claims are tracked per call, so a second call overwrites keys set
// by the first; call it once with every collection.
func AddCollectionRules(rules Rules, cs *Collections) {
	claimed := make(map[string]bool)

	for _, it := range cs.All() {
		n := len(it.Records)
		if n == 0 {
			continue
		}

		for _, p := range it.Grammar {
			if claimed[p.Key] {
				continue
			}

			claimed[p.Key] = true

			if n == 1 {
				rules[p.Key] = p.Singular
			} else {
				rules[p.Key] = p.Plural
			}
		}
	}
}
