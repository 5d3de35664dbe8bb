package category

import (
	"sort"
	"strings"
	"unicode"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

type rule struct {
	categoryID string
	keyword    string
	user       bool
}

// Categorizer assigns categories to transaction descriptions by keyword.
// A keyword matches when it appears in the description as whole words,
// ignoring case. User categories win over system ones; among those the
// longest matching keyword wins.
type Categorizer struct {
	rules []rule
}

// NewCategorizer builds a categorizer from the keywords of categories
func NewCategorizer(categories []entity.Category) *Categorizer {
	var rules []rule
	for _, c := range categories {
		for _, kw := range c.KeywordList() {
			rules = append(rules, rule{
				categoryID: c.ID,
				keyword:    kw,
				user:       c.Type == entity.CategoryTypeUser,
			})
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.user != b.user {
			return a.user
		}
		if len(a.keyword) != len(b.keyword) {
			return len(a.keyword) > len(b.keyword)
		}
		return a.categoryID < b.categoryID
	})
	return &Categorizer{rules: rules}
}

// Categorize returns the id of the best matching category
func (c *Categorizer) Categorize(description string) (string, bool) {
	text := strings.ToLower(description)
	for _, r := range c.rules {
		if containsWord(text, r.keyword) {
			return r.categoryID, true
		}
	}
	return "", false
}

// containsWord reports whether word occurs in text with no letter or digit
// directly before or after it
func containsWord(text, word string) bool {
	for start := 0; start <= len(text)-len(word); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if boundary(text, i-1) && boundary(text, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	r := rune(text[i])
	if r >= 0x80 {
		// inside a multi-byte rune
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
