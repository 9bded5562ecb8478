package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pickbetter/labelscan/internal/models"
)

func decodePayload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return m
}

func TestScanNotFoundAlwaysRoutesToContribution(t *testing.T) {
	bodies := []map[string]any{
		nil,
		{},
		{"detail": "Product with barcode 123456 not found"},
		decodePayload(t, `{"data":{"original_product":{"product_name":"Ghost"}}}`),
	}
	for _, body := range bodies {
		outcome := Scan(body, 404, "123456", nil)
		if outcome.Kind != ContributionNeeded {
			t.Fatalf("404 produced %v, want ContributionNeeded", outcome.Kind)
		}
		if outcome.Barcode != "123456" {
			t.Fatalf("404 outcome lost the barcode: %q", outcome.Barcode)
		}
		if outcome.Analysis != nil {
			t.Fatalf("404 outcome should not carry an analysis")
		}
	}
}

func TestScanNonSuccessStatusFails(t *testing.T) {
	for _, status := range []int{400, 401, 429, 500, 503} {
		outcome := Scan(map[string]any{}, status, "123456", nil)
		if outcome.Kind != ScanFailed {
			t.Fatalf("status %d produced %v, want ScanFailed", status, outcome.Kind)
		}
		if outcome.Message == "" {
			t.Fatalf("status %d produced an empty user message", status)
		}
	}
}

func TestScanEndToEnd(t *testing.T) {
	raw := decodePayload(t, `{
		"data": {
			"original_product": {
				"product_name": "Choco Bar",
				"nutriments": {"energy-kcal_100g": 500}
			},
			"gemini_analysis": {"grade": "D", "score": 40, "reasoning": "High sugar"}
		}
	}`)

	outcome := Scan(raw, 200, "8901234567890", nil)
	if outcome.Kind != ResultsReady {
		t.Fatalf("kind = %v, want ResultsReady", outcome.Kind)
	}
	a := outcome.Analysis
	if a.ProductName != "Choco Bar" {
		t.Errorf("product name = %q", a.ProductName)
	}
	if a.Grade != "D" || a.Score != 40 {
		t.Errorf("grade/score = %s/%v, want D/40", a.Grade, a.Score)
	}
	if a.Reason != "High sugar" {
		t.Errorf("reason = %q", a.Reason)
	}
	if a.Macros.Calories != "500 kcal" {
		t.Errorf("calories = %q, want \"500 kcal\"", a.Macros.Calories)
	}
	if a.Macros.Protein != "N/A" || a.Macros.Carbs != "N/A" || a.Macros.Fat != "N/A" {
		t.Errorf("missing macros should be N/A, got %+v", a.Macros)
	}
}

func TestAnalysisDefaultsWhenEverythingMissing(t *testing.T) {
	for _, raw := range []map[string]any{
		nil,
		{},
		{"data": map[string]any{}},
		decodePayload(t, `{"data":{"original_product":{},"gemini_analysis":{}}}`),
		decodePayload(t, `{"original_product":{"nutriments":null},"gemini_analysis":{"grade":null,"score":null}}`),
	} {
		a := Analysis(raw, nil)
		if a.ProductName != "Unknown Product" {
			t.Errorf("name = %q, want Unknown Product", a.ProductName)
		}
		if a.Brand != "" {
			t.Errorf("brand = %q, want empty", a.Brand)
		}
		if a.Grade != "C" {
			t.Errorf("grade = %q, want C", a.Grade)
		}
		if a.Score != 50 {
			t.Errorf("score = %v, want 50", a.Score)
		}
		for _, macro := range []string{a.Macros.Calories, a.Macros.Protein, a.Macros.Carbs, a.Macros.Fat} {
			if macro != "N/A" {
				t.Errorf("macro = %q, want N/A", macro)
			}
		}
		if a.Ingredients == nil || a.DetectedAllergens == nil || a.Alternatives == nil {
			t.Errorf("slices must never be nil: %+v", a)
		}
	}
}

func TestGradeInvariant(t *testing.T) {
	tests := []struct {
		grade any
		want  string
	}{
		{"A", "A"}, {"B", "B"}, {"C", "C"}, {"D", "D"}, {"F", "F"},
		{"a", "C"}, {"E", "C"}, {"A+", "C"}, {"", "C"}, {nil, "C"}, {42.0, "C"}, {"excellent", "C"},
	}
	for _, tt := range tests {
		raw := map[string]any{"analysis": map[string]any{"grade": tt.grade}}
		a := Analysis(raw, nil)
		if a.Grade != tt.want {
			t.Errorf("grade %v normalized to %q, want %q", tt.grade, a.Grade, tt.want)
		}
		switch a.Grade {
		case "A", "B", "C", "D", "F":
		default:
			t.Fatalf("grade invariant broken: %q", a.Grade)
		}
	}
}

func TestScoreAcceptsOnlyNumbers(t *testing.T) {
	tests := []struct {
		score any
		want  float64
	}{
		{40.0, 40},
		{0.0, 0},     // explicit zero is kept, not treated as missing
		{120.0, 120}, // out of range values pass through unclamped
		{"85", 50},
		{nil, 50},
		{true, 50},
	}
	for _, tt := range tests {
		raw := map[string]any{"gemini_analysis": map[string]any{"score": tt.score}}
		a := Analysis(raw, nil)
		if a.Score != tt.want {
			t.Errorf("score %v normalized to %v, want %v", tt.score, a.Score, tt.want)
		}
	}
}

func TestEnvelopeAndKeySynonyms(t *testing.T) {
	wrapped := decodePayload(t, `{"data":{"product":{"name":"Oat Mix","brand":"Acme"},"analysis":{"grade":"B","score":72}}}`)
	bare := decodePayload(t, `{"original_product":{"product_name":"Oat Mix","brands":"Acme"},"gemini_analysis":{"grade":"B","score":72}}`)

	a1 := Analysis(wrapped, nil)
	a2 := Analysis(bare, nil)
	if a1.ProductName != "Oat Mix" || a2.ProductName != "Oat Mix" {
		t.Errorf("name synonyms: %q vs %q", a1.ProductName, a2.ProductName)
	}
	if a1.Brand != "Acme" || a2.Brand != "Acme" {
		t.Errorf("brand synonyms: %q vs %q", a1.Brand, a2.Brand)
	}
	if a1.Grade != a2.Grade || a1.Score != a2.Score {
		t.Errorf("analysis synonyms diverged: %s/%v vs %s/%v", a1.Grade, a1.Score, a2.Grade, a2.Score)
	}
}

func TestNutrientKeySynonyms(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"energy-kcal_100g", "250 kcal"},
		{"energy_kcal_100g", "250 kcal"},
		{"calories_100g", "250 kcal"},
	}
	for _, tt := range tests {
		raw := map[string]any{
			"product": map[string]any{"nutriments": map[string]any{tt.key: 250.0}},
		}
		a := Analysis(raw, nil)
		if a.Macros.Calories != tt.want {
			t.Errorf("key %s → %q, want %q", tt.key, a.Macros.Calories, tt.want)
		}
	}

	raw := decodePayload(t, `{"product":{"nutriments":{"proteins_100g":12.5,"carbs_100g":30,"fat_100g":"lots"}}}`)
	a := Analysis(raw, nil)
	if a.Macros.Protein != "12.5g" {
		t.Errorf("protein = %q, want 12.5g", a.Macros.Protein)
	}
	if a.Macros.Carbs != "30g" {
		t.Errorf("carbs = %q, want 30g", a.Macros.Carbs)
	}
	if a.Macros.Fat != "N/A" {
		t.Errorf("non-numeric fat should be N/A, got %q", a.Macros.Fat)
	}
}

func TestIdempotence(t *testing.T) {
	raw := decodePayload(t, `{
		"data": {
			"original_product": {
				"product_name": "Trail Mix",
				"brands": "Hiker",
				"ingredients_text": "almonds, raisins, dark chocolate",
				"nutriments": {"energy-kcal_100g": 480, "proteins_100g": 14}
			},
			"gemini_analysis": {"grade": "B", "score": 68, "reasoning": "Dense but nutritious"},
			"recommendations": [
				{"product": {"product_name": "Plain Almonds"}, "analysis": {"grade": "A", "score": 88}}
			]
		}
	}`)
	profile := &models.UserProfile{Allergens: []string{"nuts"}}

	first := Analysis(raw, profile)
	second := Analysis(raw, profile)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAlternativesDefaultAsymmetry(t *testing.T) {
	raw := decodePayload(t, `{
		"data": {
			"original_product": {"product_name": "Mystery Snack"},
			"recommendations": [
				{"product": {"product_name": "Mystery Alternative"}}
			]
		}
	}`)
	a := Analysis(raw, nil)

	if a.Grade != "C" || a.Score != 50 {
		t.Fatalf("primary defaults = %s/%v, want C/50", a.Grade, a.Score)
	}
	if len(a.Alternatives) != 1 {
		t.Fatalf("expected one alternative, got %d", len(a.Alternatives))
	}
	alt := a.Alternatives[0]
	if alt.Grade != "B" || alt.Score != 70 {
		t.Fatalf("alternative defaults = %s/%v, want B/70", alt.Grade, alt.Score)
	}
}

func TestAlternativesMapIndependently(t *testing.T) {
	raw := decodePayload(t, `{
		"recommendations": [
			{"product": {"product_name": "Good Bar", "brands": "B1"},
			 "analysis": {"grade": "A", "score": 92},
			 "personalized_recommendation": "Swap for less sugar"},
			{"original_product": {"name": "Okay Bar"}, "gemini_analysis": {"grade": "Z"}},
			"not-an-object",
			{"product": {}}
		]
	}`)
	a := Analysis(raw, nil)
	if len(a.Alternatives) != 3 {
		t.Fatalf("expected 3 alternatives (junk entry skipped), got %d", len(a.Alternatives))
	}
	if a.Alternatives[0].Grade != "A" || a.Alternatives[0].Score != 92 || a.Alternatives[0].Reason != "Swap for less sugar" {
		t.Errorf("first alternative mismapped: %+v", a.Alternatives[0])
	}
	if a.Alternatives[1].Name != "Okay Bar" || a.Alternatives[1].Grade != "B" {
		t.Errorf("second alternative mismapped: %+v", a.Alternatives[1])
	}
	if a.Alternatives[2].Name != "Unknown Product" || a.Alternatives[2].Score != 70 {
		t.Errorf("empty alternative should use defaults: %+v", a.Alternatives[2])
	}
}

func TestDetectAllergens(t *testing.T) {
	tests := []struct {
		name        string
		registered  []string
		ingredients string
		want        []string
	}{
		{"wheat in flour", []string{"wheat"}, "whole wheat flour", []string{"wheat"}},
		{"nuts via almond", []string{"nuts"}, "almond milk", []string{"nuts"}},
		{"soy absent", []string{"soy"}, "rice, water", []string{}},
		{"standard compound label", []string{"Tree Nuts (Cashews, Almonds, Walnuts)"}, "roasted cashews, salt", []string{"Tree Nuts (Cashews, Almonds, Walnuts)"}},
		{"milk slash dairy label", []string{"Milk/Dairy"}, "sugar, whey protein", []string{"Milk/Dairy"}},
		{"unlisted label falls back to itself", []string{"quinoa"}, "quinoa flakes, salt", []string{"quinoa"}},
		{"case insensitive", []string{"Soy"}, "SOYBEAN OIL", []string{"Soy"}},
		{"nutmeg false positive is accepted behavior", []string{"nuts"}, "nutmeg, cinnamon", []string{"nuts"}},
		{"empty ingredients", []string{"wheat"}, "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAllergens(tt.registered, tt.ingredients)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectAllergens(%v, %q) = %v, want %v", tt.registered, tt.ingredients, got, tt.want)
			}
		})
	}
}

func TestAnalysisAttachesProfileAllergens(t *testing.T) {
	raw := decodePayload(t, `{
		"data": {
			"original_product": {
				"product_name": "Cookie",
				"ingredients_text": "wheat flour, butter, sugar"
			}
		}
	}`)
	profile := &models.UserProfile{Allergens: []string{"wheat", "soy"}}
	a := Analysis(raw, profile)
	if !reflect.DeepEqual(a.DetectedAllergens, []string{"wheat"}) {
		t.Fatalf("detected = %v, want [wheat]", a.DetectedAllergens)
	}
}

func TestSplitIngredients(t *testing.T) {
	raw := map[string]any{
		"product": map[string]any{"ingredients_text": "oats, honey , , almonds"},
	}
	a := Analysis(raw, nil)
	want := []string{"oats", "honey", "almonds"}
	if !reflect.DeepEqual(a.Ingredients, want) {
		t.Fatalf("ingredients = %v, want %v", a.Ingredients, want)
	}
}
