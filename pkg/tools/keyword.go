package tools

import "regexp"

// categoryPatterns tags a question with the dataset categories it touches.
// This is a non-exclusive, regex-driven tagging used only to pick local
// search sub-categories. It never gates the structured/general routing.
var categoryPatterns = map[string]*regexp.Regexp{
	"match":         regexp.MustCompile(`(?i)\b(match|game|fixture|schedule|stadium)\b`),
	"accommodation": regexp.MustCompile(`(?i)\b(hotel|hostel|room|stay|accommodation)\b`),
	"restaurant":    regexp.MustCompile(`(?i)\b(restaurant|food|eat|dining)\b`),
	"health":        regexp.MustCompile(`(?i)\b(hospital|pharmacy|doctor|medical|health)\b`),
	"transport":     regexp.MustCompile(`(?i)\b(transport|bus|train|taxi|direction|travel)\b`),
	"weather":       regexp.MustCompile(`(?i)\b(weather|temperature|rain|forecast)\b`),
	"general":       regexp.MustCompile(`(?i)\b(morocco|afcon|can|tourism|visit)\b`),
}

// categoryOrder keeps tagging output deterministic.
var categoryOrder = []string{"match", "accommodation", "restaurant", "health", "transport", "weather", "general"}

// ClassifyCategories returns the matching categories in a fixed order, or
// ["general"] when nothing matches.
func ClassifyCategories(query string) []string {
	var categories []string
	for _, name := range categoryOrder {
		if categoryPatterns[name].MatchString(query) {
			categories = append(categories, name)
		}
	}
	if len(categories) == 0 {
		return []string{"general"}
	}
	return categories
}
