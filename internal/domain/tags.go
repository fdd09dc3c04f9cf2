package domain

import "strings"

// Canonical tag sets for the shared content pool. Free-text profile input
// is normalized onto these keys so pool queries can match on stable tags
// instead of raw user strings.

// JobRoles maps canonical job-role tags to display labels.
var JobRoles = map[string]string{
	"software_engineer":    "Software Engineer",
	"product_manager":      "Product Manager",
	"designer":             "Designer",
	"marketing":            "Marketing",
	"sales":                "Sales",
	"finance":              "Finance",
	"healthcare":           "Healthcare",
	"education":            "Education",
	"business_development": "Business Development",
	"general_business":     "General Business",
}

// Interests maps canonical interest tags to display labels.
var Interests = map[string]string{
	"technology":    "Technology",
	"business":      "Business",
	"travel":        "Travel",
	"food":          "Food",
	"sports":        "Sports",
	"culture":       "Culture",
	"daily_life":    "Daily Life",
	"entertainment": "Entertainment",
	"health":        "Health",
	"finance":       "Finance",
}

// jobRoleAliases matches common shorthand inside free-text job input.
// Order matters only where aliases overlap, so keep the more specific
// entries first.
var jobRoleAliases = []struct {
	substr string
	tag    string
}{
	{"swe", "software_engineer"},
	{"engineer", "software_engineer"},
	{"developer", "software_engineer"},
	{"dev", "software_engineer"},
	{"pm", "product_manager"},
	{"ui", "designer"},
	{"ux", "designer"},
	{"mark", "marketing"},
	{"sales", "sales"},
	{"biz", "business_development"},
	{"finance", "finance"},
	{"health", "healthcare"},
	{"med", "healthcare"},
	{"teach", "education"},
}

var interestAliases = []struct {
	substr string
	tag    string
}{
	{"tech", "technology"},
	{"comput", "technology"},
	{"travel", "travel"},
	{"trip", "travel"},
	{"food", "food"},
	{"cook", "food"},
	{"sport", "sports"},
	{"cultur", "culture"},
	{"art", "culture"},
	{"movie", "entertainment"},
	{"music", "entertainment"},
	{"game", "entertainment"},
	{"health", "health"},
	{"fitness", "health"},
	{"money", "finance"},
	{"invest", "finance"},
	{"business", "business"},
}

// NormalizeJobRole maps free-text job input onto a canonical job-role tag,
// falling back to general_business when nothing matches.
func NormalizeJobRole(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return "general_business"
	}

	if _, ok := JobRoles[lower]; ok {
		return lower
	}

	for _, a := range jobRoleAliases {
		if strings.Contains(lower, a.substr) {
			return a.tag
		}
	}

	return "general_business"
}

// NormalizeInterest maps free-text interest input onto a canonical
// interest tag, falling back to daily_life when nothing matches.
func NormalizeInterest(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return "daily_life"
	}

	if _, ok := Interests[lower]; ok {
		return lower
	}

	for _, a := range interestAliases {
		if strings.Contains(lower, a.substr) {
			return a.tag
		}
	}

	return "daily_life"
}

// LevelInstruction returns the prompt guidance for a proficiency level.
// Unknown levels get the intermediate instruction; callers are expected
// to have validated the level already.
func LevelInstruction(l Level) string {
	switch l {
	case LevelBeginner:
		return "Use simple sentence structures (SVO/SVOO). Focus on basic verbs and tenses. Target CEFR A2."
	case LevelAdvanced:
		return "Use sophisticated sentence structures. Subjunctive Mood, Idioms. Target CEFR C1."
	default:
		return "Use standard business English structures. Present Perfect, Passive, Modals. Target CEFR B1/B2."
	}
}
