package models

import (
	"fmt"
	"time"
)

// Macros holds the per-100g macro values as display strings, either
// "<value> kcal" / "<value>g" or the literal "N/A" when the backend
// did not supply a number.
type Macros struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
}

// Alternative is a suggested substitute product ranked healthier than
// the scanned one.
type Alternative struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Grade    string  `json:"grade"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
	ImageURL string  `json:"image_url,omitempty"`
}

// FoodAnalysis is the canonical shape every scan or contribution
// response is normalized into. Every field is always populated; the
// normalizer substitutes documented defaults for anything the backend
// left out.
type FoodAnalysis struct {
	ProductName       string         `json:"product_name"`
	Brand             string         `json:"brand"`
	Grade             string         `json:"grade"` // one of A, B, C, D, F
	Score             float64        `json:"score"`
	Reason            string         `json:"reason"`
	Ingredients       []string       `json:"ingredients"`
	IngredientsText   string         `json:"ingredients_text"`
	Macros            Macros         `json:"macros"`
	DetectedAllergens []string       `json:"detected_allergens"`
	Alternatives      []Alternative  `json:"alternatives"`
	ImageURL          string         `json:"image_url,omitempty"`
	RawAnalysis       map[string]any `json:"raw_analysis,omitempty"`
	UserContext       string         `json:"user_context,omitempty"`
}

// HistoryItem wraps a completed analysis for the per-user scan
// history. The id is timestamp derived and unique within a session.
type HistoryItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Brand     string       `json:"brand"`
	Grade     string       `json:"grade"`
	Score     float64      `json:"score"`
	ScannedAt string       `json:"scanned_at"`
	Analysis  FoodAnalysis `json:"analysis"`
}

// NewHistoryItem builds a HistoryItem from a finished analysis.
func NewHistoryItem(analysis FoodAnalysis, now time.Time) HistoryItem {
	return HistoryItem{
		ID:        fmt.Sprintf("%d", now.UnixMilli()),
		Name:      analysis.ProductName,
		Brand:     analysis.Brand,
		Grade:     analysis.Grade,
		Score:     analysis.Score,
		ScannedAt: now.Format("Jan 2, 2006 3:04 PM"),
		Analysis:  analysis,
	}
}
