package normalize

import "strings"

// allergenKeywords expands a registered allergen label into the
// ingredient keywords that indicate its presence. Labels without an
// entry fall back to matching the label itself. Matching is a
// case-insensitive substring test against the free-text ingredient
// list, so false positives are possible ("nut" matches "nutmeg").
var allergenKeywords = map[string][]string{
	"peanuts":   {"peanut", "groundnut", "arachis"},
	"nuts":      {"almond", "walnut", "cashew", "pistachio", "pecan", "hazelnut", "brazil nut", "macadamia", "nut"},
	"tree nuts": {"almond", "walnut", "cashew", "pistachio", "pecan", "hazelnut", "brazil nut", "macadamia", "nut"},
	"milk":      {"milk", "curd", "paneer", "whey", "casein", "lactose", "cream", "ghee", "butter", "cheese", "yogurt"},
	"dairy":     {"milk", "curd", "paneer", "whey", "casein", "lactose", "cream", "ghee", "butter", "cheese", "yogurt"},
	"wheat":     {"wheat", "gluten", "maida", "atta", "flour", "bread", "pasta", "noodle"},
	"gluten":    {"wheat", "gluten", "maida", "atta", "flour", "bread", "pasta", "noodle"},
	"mustard":   {"mustard", "sarson", "rai"},
	"soy":       {"soy", "soya", "soybean", "tofu", "tempeh", "edamame"},
	"egg":       {"egg", "albumin", "lecithin"},
	"eggs":      {"egg", "albumin", "lecithin"},
	"sesame":    {"sesame", "til", "tahini"},
	"fish":      {"fish", "sardine", "salmon", "tuna", "cod", "anchovy"},
	"shellfish": {"shellfish", "prawn", "shrimp", "crab", "lobster", "mussel", "clam", "oyster"},
}

// keywordsFor resolves a user-entered allergen label to its expansion
// keywords. Compound standard labels like "Tree Nuts (Cashews,
// Almonds, Walnuts)" or "Milk/Dairy" resolve through any of their
// word parts.
func keywordsFor(label string) []string {
	lower := strings.ToLower(strings.TrimSpace(label))
	if kw, ok := allergenKeywords[lower]; ok {
		return kw
	}
	for key, kw := range allergenKeywords {
		if strings.Contains(lower, key) {
			return kw
		}
	}
	return []string{lower}
}

// DetectAllergens reports which of the user's registered allergens
// appear to be present in the ingredient text. An allergen counts as
// detected when any of its expansion keywords matches. This is a
// heuristic, not an ingredient parse.
func DetectAllergens(registered []string, ingredientsText string) []string {
	detected := make([]string, 0, len(registered))
	text := strings.ToLower(ingredientsText)
	if text == "" {
		return detected
	}
	for _, allergen := range registered {
		for _, keyword := range keywordsFor(allergen) {
			if keyword != "" && strings.Contains(text, keyword) {
				detected = append(detected, allergen)
				break
			}
		}
	}
	return detected
}
