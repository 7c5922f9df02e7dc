package lang

import "testing"

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		prefix string
		want   string
	}{
		{
			"articles and subarticles",
			"[[ARTICLE]] A\n[[SUBARTICLE]] a\n[[SUBARTICLE]] b\n[[ARTICLE]] B\n[[SUBARTICLE]] c",
			"Article",
			"Article 1 A\n1.1 a\n1.2 b\nArticle 2 B\n2.1 c",
		},
		{
			"reset",
			"[[ARTICLE]] Title\n[[SUBARTICLE]] Sub\n[[ARTICLE_RESET]][[ARTICLE]] Title\n[[SUBARTICLE]] Sub",
			"Article",
			"Article 1 Title\n1.1 Sub\nArticle 1 Title\n1.1 Sub",
		},
		{
			"number only does not increment",
			"[[ARTICLE]] see [[ARTICLE_NUMBER]]; [[ARTICLE]] after [[ARTICLE_NUMBER]]",
			"Artikel",
			"Artikel 1 see 1; Artikel 2 after 2",
		},
		{"no prefix", "[[ARTICLE]]. x", "", "1. x"},
		{"subarticle first", "[[SUBARTICLE]]", "Article", "0.1"},
		{"no markers", "plain [[Name]]", "Article", "plain [[Name]]"},
		{"spaces in marker", "[[ ARTICLE ]]", "Article", "Article 1"},
		{"lowercase is not a marker", "[[article]] a\n[[Article]] b\n[[ARTICLE]] c", "Article", "[[article]] a\n[[Article]] b\nArticle 1 c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Number(tt.in, tt.prefix); got != tt.want {
				t.Errorf("Number = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumber_StateIsPerCall(t *testing.T) {
	first := Number("[[ARTICLE]]", "Article")
	second := Number("[[ARTICLE]]", "Article")

	if first != "Article 1" || second != "Article 1" {
		t.Errorf("counters leaked between calls: %q, %q", first, second)
	}
}
