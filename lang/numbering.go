package lang

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultArticlePrefix is the label written before top-level article
// numbers.
const DefaultArticlePrefix = "Article"

var numberingPattern = regexp.MustCompile(
	`\[\[\s*(ARTICLE_NUMBER|ARTICLE_RESET|SUBARTICLE|ARTICLE)\s*\]\]`,
)

// numbering is the counter state of one numbering pass.
type numbering struct {
	prefix  string
	article int
	sub     int
}

func (n *numbering) next(marker string) string {
	switch marker {
	case markerArticle:
		n.article++
		n.sub = 0

		if n.prefix == "" {
			return strconv.Itoa(n.article)
		}

		return n.prefix + " " + strconv.Itoa(n.article)

	case markerSubarticle:
		n.sub++

		return strconv.Itoa(n.article) + "." + strconv.Itoa(n.sub)

	case markerArticleNumber:
		return strconv.Itoa(n.article)

	case markerArticleReset:
		n.article, n.sub = 0, 0
	}

	return ""
}

// Number replaces the numbering markers of text in document order:
//
//	[[ARTICLE]]         "<prefix> N", starts a new article
//	[[SUBARTICLE]]      "N.M"
//	[[ARTICLE_NUMBER]]  "N", the current article, for cross-references
//	[[ARTICLE_RESET]]   nothing; restarts both counters
//
// Counters start at zero on every call. Run it after every other pass so
// removed content never consumes a number.
func Number(text, prefix string) string {
	if !strings.Contains(text, "[[") {
		return text
	}

	n := &numbering{prefix: strings.TrimSpace(prefix)}

	return numberingPattern.ReplaceAllStringFunc(text, func(m string) string {
		return n.next(numberingPattern.FindStringSubmatch(m)[1])
	})
}
