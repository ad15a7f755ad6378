package domain

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultKeywords are the bulletin terms that mark a feed item as a weather warning.
var DefaultKeywords = []string{"警報", "特報", "豪(大)雨特報", "低溫特報", "濃霧特報"}

// WarningItem is the reduced projection of one RSS item returned to clients.
// Missing source elements are kept as empty strings, never omitted.
type WarningItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
}

// WarningsResponse is the body of a successful warnings request.
type WarningsResponse struct {
	Success  bool          `json:"success"`
	Warnings []WarningItem `json:"warnings"`
}

// NewWarningsResponse wraps matched items, normalising a nil slice to an empty array.
func NewWarningsResponse(items []WarningItem) WarningsResponse {
	if items == nil {
		items = []WarningItem{}
	}
	return WarningsResponse{Success: true, Warnings: items}
}

// KeywordFilter keeps items whose title or description contains one of its keywords.
// Matching is a case-sensitive substring check.
type KeywordFilter struct {
	keywords []string
}

// NewKeywordFilter builds a filter over the given keywords. Blank keywords are
// dropped since they would match everything.
func NewKeywordFilter(keywords ...string) KeywordFilter {
	return KeywordFilter{
		keywords: lo.Filter(keywords, func(kw string, _ int) bool {
			return kw != ""
		}),
	}
}

// DefaultKeywordFilter returns a filter over DefaultKeywords.
func DefaultKeywordFilter() KeywordFilter {
	return NewKeywordFilter(DefaultKeywords...)
}

// Keywords returns a copy of the filter's keyword list.
func (f KeywordFilter) Keywords() []string {
	return append([]string(nil), f.keywords...)
}

// Match reports whether the item's title or description contains any keyword.
func (f KeywordFilter) Match(item WarningItem) bool {
	return lo.SomeBy(f.keywords, func(kw string) bool {
		return strings.Contains(item.Title, kw) || strings.Contains(item.Description, kw)
	})
}

// Apply returns the matching items in their original order.
func (f KeywordFilter) Apply(items []WarningItem) []WarningItem {
	matched := lo.Filter(items, func(item WarningItem, _ int) bool {
		return f.Match(item)
	})
	if matched == nil {
		return []WarningItem{}
	}
	return matched
}
