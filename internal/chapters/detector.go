package chapters

import (
	"regexp"
	"strings"
)

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^section$`),
	regexp.MustCompile(`(?i)^chapter\s+\d+$`),
	regexp.MustCompile(`(?i)^part\s+\d+$`),
	regexp.MustCompile(`(?i)^topic\s+\d+$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[\d:.\s-]+$`),
}

// IsGenericTitle returns true if the title is a placeholder rather than a
// content-derived name.
func IsGenericTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return true
	}
	for _, pattern := range genericPatterns {
		if pattern.MatchString(title) {
			return true
		}
	}
	return false
}

// Analysis contains title quality statistics, reported in debug payloads.
type Analysis struct {
	Total          int     `json:"total"`
	GenericCount   int     `json:"genericCount"`
	GenericPercent float64 `json:"genericPercent"`
}

// Analyze returns statistics about how many chapter titles are placeholders.
func Analyze(list []Chapter) Analysis {
	if len(list) == 0 {
		return Analysis{}
	}

	generic := 0
	for _, ch := range list {
		if IsGenericTitle(ch.Title) {
			generic++
		}
	}

	return Analysis{
		Total:          len(list),
		GenericCount:   generic,
		GenericPercent: float64(generic) / float64(len(list)),
	}
}
