package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// UserProfile is the health profile a signed-in user maintains. It is
// persisted on the backend and feeds the personalized allergen
// detection performed after every scan.
type UserProfile struct {
	UserID            string   `json:"user_id"`
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Sex               string   `json:"sex"`
	HeightCm          float64  `json:"height"`
	WeightKg          float64  `json:"weight"`
	Conditions        []string `json:"health_conditions"`
	Allergens         []string `json:"allergens"`
	DietType          string   `json:"dietary_preference"`
	PrimaryGoal       string   `json:"primary_goal"`
	CustomNeeds       []string `json:"custom_needs,omitempty"`
	CustomNeedsStatus string   `json:"custom_needs_status,omitempty"` // "pending" once queued for review
}

// Standard option lists. Anything a user enters outside these is a
// custom need and gets queued for manual review on the backend.
var (
	StandardConditions = []string{
		"Diabetes / Prediabetes",
		"Hypertension (High BP)",
		"PCOS / PCOD",
		"High Cholesterol",
	}

	StandardAllergens = []string{
		"Peanuts",
		"Tree Nuts (Cashews, Almonds, Walnuts)",
		"Milk/Dairy",
		"Wheat/Gluten",
		"Mustard",
		"Soy",
		"Egg",
		"Sesame",
		"Shellfish/Fish",
	}

	StandardDietTypes = []string{
		"General",
		"Vegan",
		"Vegetarian",
		"Keto",
		"Paleo",
		"Mediterranean",
		"Low Carb",
	}

	StandardGoals = []string{
		"Muscle Gain",
		"Weight Loss",
		"Heart Health",
		"Sugar Control",
	}
)

func isStandard(label string, options []string) bool {
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(label), opt) {
			return true
		}
	}
	return false
}

// SplitCustomNeeds partitions the profile's condition and allergen
// labels into standard entries and custom needs. Custom needs keep
// their original spelling.
func (p *UserProfile) SplitCustomNeeds() (standard, custom []string) {
	for _, c := range p.Conditions {
		if isStandard(c, StandardConditions) {
			standard = append(standard, c)
		} else {
			custom = append(custom, c)
		}
	}
	for _, a := range p.Allergens {
		if isStandard(a, StandardAllergens) {
			standard = append(standard, a)
		} else {
			custom = append(custom, a)
		}
	}
	return standard, custom
}

// SaveProfileFile writes the local copy of the profile.
func SaveProfileFile(path string, p *UserProfile) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// LoadProfileFile reads the local profile copy. A missing file is not
// an error; it returns nil so callers fall back to an empty profile.
func LoadProfileFile(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// ChatContext is the profile subset sent along with chat messages.
func (p *UserProfile) ChatContext() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"conditions":         p.Conditions,
		"allergens":          p.Allergens,
		"dietary_preference": p.DietType,
		"primary_goal":       p.PrimaryGoal,
		"age":                p.Age,
		"sex":                p.Sex,
	}
}
