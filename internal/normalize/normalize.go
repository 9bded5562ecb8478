package normalize

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pickbetter/labelscan/internal/models"
)

// OutcomeKind is the routing decision a scan response resolves to.
type OutcomeKind int

const (
	// ResultsReady means a canonical analysis was produced and the
	// caller should display it.
	ResultsReady OutcomeKind = iota
	// ContributionNeeded means the barcode is unknown upstream and
	// the caller should route to the contribution flow.
	ContributionNeeded
	// ScanFailed means transport or server failure; the caller
	// surfaces the message and stays where it is.
	ScanFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case ResultsReady:
		return "results_ready"
	case ContributionNeeded:
		return "contribution_needed"
	default:
		return "scan_failed"
	}
}

// Outcome carries the routing decision plus the analysis when one was
// produced. Analysis is non-nil exactly when Kind == ResultsReady.
type Outcome struct {
	Kind     OutcomeKind
	Barcode  string
	Analysis *models.FoodAnalysis
	Message  string
}

// Defaults applied when the backend leaves a field out. Alternatives
// get the more generous grade/score pair: the recommendation engine
// only proposes products it ranks healthier.
const (
	defaultProductName = "Unknown Product"
	defaultGrade       = "C"
	defaultScore       = 50
	defaultAltGrade    = "B"
	defaultAltScore    = 70
	macroMissing       = "N/A"
)

// Scan normalizes a raw backend payload plus HTTP status into an
// Outcome. It never fails on malformed or missing fields: every
// analysis field has a total default. Only the HTTP status decides
// between the three routes.
func Scan(raw map[string]any, httpStatus int, barcode string, profile *models.UserProfile) Outcome {
	if httpStatus == http.StatusNotFound {
		return Outcome{Kind: ContributionNeeded, Barcode: barcode}
	}
	if httpStatus < 200 || httpStatus >= 300 {
		return Outcome{
			Kind:    ScanFailed,
			Barcode: barcode,
			Message: statusMessage(httpStatus),
		}
	}

	analysis := Analysis(raw, profile)
	return Outcome{Kind: ResultsReady, Barcode: barcode, Analysis: &analysis}
}

// Analysis turns one raw scan/contribution payload into the canonical
// FoodAnalysis. The payload may or may not be wrapped in a "data"
// envelope, and the product/analysis sub-objects go by two names each
// depending on which backend path produced them.
func Analysis(raw map[string]any, profile *models.UserProfile) models.FoodAnalysis {
	payload := envelope(raw)
	product := subObject(payload, "original_product", "product")
	aiAnalysis := subObject(payload, "gemini_analysis", "analysis")
	nutriments := subObject(product, "nutriments", "nutrition")

	ingredientsText := firstString(product, "ingredients_text", "ingredients")

	out := models.FoodAnalysis{
		ProductName:       stringOr(firstString(product, "product_name", "name"), defaultProductName),
		Brand:             firstString(product, "brands", "brand"),
		Grade:             validGrade(firstString(aiAnalysis, "grade"), defaultGrade),
		Score:             numberOr(aiAnalysis, defaultScore, "score"),
		Reason:            firstString(aiAnalysis, "reasoning", "reason", "explanation"),
		Ingredients:       splitIngredients(ingredientsText),
		IngredientsText:   ingredientsText,
		ImageURL:          firstString(product, "image_url", "image"),
		UserContext:       firstString(payload, "user_context"),
		Macros:            extractMacros(nutriments),
		DetectedAllergens: []string{},
		Alternatives:      alternatives(payload, aiAnalysis),
		RawAnalysis:       aiAnalysis,
	}

	if profile != nil {
		out.DetectedAllergens = DetectAllergens(profile.Allergens, ingredientsText)
	}
	return out
}

func extractMacros(nutriments map[string]any) models.Macros {
	return models.Macros{
		Calories: formatMacro(nutriments, " kcal", "energy-kcal_100g", "energy_kcal_100g", "calories_100g"),
		Protein:  formatMacro(nutriments, "g", "proteins_100g", "protein_100g"),
		Carbs:    formatMacro(nutriments, "g", "carbohydrates_100g", "carbs_100g"),
		Fat:      formatMacro(nutriments, "g", "fat_100g", "fats_100g"),
	}
}

// alternatives maps the recommendation list, which rides either next
// to the product or inside the analysis sub-object. Entries come in
// two shapes: nested product/analysis objects, or flat name/grade keys
// straight on the entry.
func alternatives(payload, aiAnalysis map[string]any) []models.Alternative {
	recs, ok := payload["recommendations"].([]any)
	if !ok {
		recs, ok = aiAnalysis["recommendations"].([]any)
	}
	if !ok {
		return []models.Alternative{}
	}
	out := make([]models.Alternative, 0, len(recs))
	for _, rec := range recs {
		entry, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		product := subObject(entry, "original_product", "product")
		analysis := subObject(entry, "gemini_analysis", "analysis")
		name := stringOr(
			firstString(product, "product_name", "name"),
			firstString(entry, "product_name", "name"),
		)
		grade := stringOr(
			firstString(analysis, "grade"),
			firstString(entry, "grade"),
		)
		score, haveScore := firstNumber(analysis, "score")
		if !haveScore {
			score, haveScore = firstNumber(entry, "score")
		}
		if !haveScore {
			score = defaultAltScore
		}
		out = append(out, models.Alternative{
			Name:   stringOr(name, defaultProductName),
			Brand:  stringOr(firstString(product, "brands", "brand"), firstString(entry, "brands", "brand")),
			Grade:  validGrade(grade, defaultAltGrade),
			Score:  score,
			Reason: firstString(entry, "personalized_recommendation", "reasoning", "reason"),
			ImageURL: stringOr(
				firstString(product, "image_url", "image"),
				firstString(entry, "image_url"),
			),
		})
	}
	return out
}

// envelope prefers a nested "data" object when present, otherwise the
// root is the payload.
func envelope(raw map[string]any) map[string]any {
	if raw == nil {
		return map[string]any{}
	}
	if data, ok := raw["data"].(map[string]any); ok {
		return data
	}
	return raw
}

// subObject returns the first present map under any of the given keys.
func subObject(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if sub, ok := m[key].(map[string]any); ok {
			return sub
		}
	}
	return map[string]any{}
}

// firstString folds the ordered key list to the first non-empty
// string value. Non-string values under a matching key are skipped.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstNumber folds the ordered key list to the first native numeric
// value. Strings that happen to contain digits do not count.
func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}

func numberOr(m map[string]any, fallback float64, keys ...string) float64 {
	if v, ok := firstNumber(m, keys...); ok {
		return v
	}
	return fallback
}

func stringOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// validGrade accepts the extracted grade only when it is exactly one
// of the five letters; anything else, lowercase included, falls back.
func validGrade(grade, fallback string) string {
	switch grade {
	case "A", "B", "C", "D", "F":
		return grade
	default:
		return fallback
	}
}

func formatMacro(nutriments map[string]any, unit string, keys ...string) string {
	v, ok := firstNumber(nutriments, keys...)
	if !ok {
		return macroMissing
	}
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d%s", int64(v), unit)
	}
	return fmt.Sprintf("%g%s", v, unit)
}

func splitIngredients(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func statusMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "Your session has expired. Please sign in again."
	case status == http.StatusTooManyRequests:
		return "Too many scans right now. Please wait a moment and try again."
	case status >= 500:
		return fmt.Sprintf("The analysis service is having trouble (HTTP %d). Please try again.", status)
	default:
		return fmt.Sprintf("Scan failed (HTTP %d). Please try again.", status)
	}
}
