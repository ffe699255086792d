package classify

import "strings"

// DefaultKeywords covers the native-script name components plus the romanized
// aliases commonly used in English-language coverage.
var DefaultKeywords = []string{"大谷", "翔平", "Shohei", "Ohtani", "オオタニサン", "Showtime"}

// Classifier decides whether an article concerns Shohei Ohtani via
// case-insensitive keyword matching. It performs no I/O.
type Classifier struct {
	keywords []string
}

// New builds a classifier; an empty keyword list falls back to DefaultKeywords.
func New(keywords []string) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	return &Classifier{keywords: lowered}
}

// IsOtaniArticle reports whether any keyword appears in the concatenation of
// title, excerpt, and extracted body content.
func (c *Classifier) IsOtaniArticle(title, excerpt, content string) bool {
	haystack := strings.ToLower(title + " " + excerpt + " " + content)
	for _, kw := range c.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
