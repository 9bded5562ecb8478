package demo

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"strings"

	"github.com/jaswdr/faker"

	"github.com/pickbetter/labelscan/internal/client"
)

// Backend is an offline stand-in for the analysis service. Payloads
// are generated in the same wire shape the real backend uses, so the
// normalizer and the rest of the pipeline run unchanged. Responses are
// deterministic for a given seed and barcode.
type Backend struct {
	seed int64
}

func NewBackend(seed int64) *Backend {
	return &Backend{seed: seed}
}

// Barcodes ending in 0 play the role of products missing from the
// catalogue.
func (b *Backend) Scan(ctx context.Context, barcode string) (map[string]any, int, error) {
	if strings.HasSuffix(barcode, "0") {
		return map[string]any{"detail": "Product not found"}, http.StatusNotFound, nil
	}
	return b.productPayload(barcode), http.StatusOK, nil
}

func (b *Backend) Contribute(ctx context.Context, in client.ContributionInput) (*client.ContributionResult, error) {
	payload := b.productPayload(in.Barcode)
	if in.ProductName != "" {
		product := payload["data"].(map[string]any)["original_product"].(map[string]any)
		product["product_name"] = in.ProductName
		product["brand"] = in.Brand
	}
	return &client.ContributionResult{
		Payload: payload,
		Message: "Thank you! Your contribution has been analyzed.",
	}, nil
}

func (b *Backend) Chat(ctx context.Context, messages []client.ChatMessage, profile map[string]any) (string, error) {
	if len(messages) == 0 {
		return "Ask me anything about the products you have scanned.", nil
	}
	last := messages[len(messages)-1]
	return fmt.Sprintf("You asked about %q. I am an offline assistant, so here is a general tip: check the ingredient list for added sugar and keep an eye on your registered allergens.", last.Content), nil
}

func (b *Backend) fakeFor(barcode string) faker.Faker {
	h := fnv.New64a()
	h.Write([]byte(barcode))
	return faker.NewWithSeed(rand.NewSource(b.seed ^ int64(h.Sum64())))
}

func (b *Backend) productPayload(barcode string) map[string]any {
	fake := b.fakeFor(barcode)

	kinds := []string{"Bar", "Cereal", "Snack", "Drink", "Spread"}
	name := fmt.Sprintf("%s %s", fake.Food().Fruit(), kinds[fake.IntBetween(0, len(kinds)-1)])
	grades := []string{"A", "B", "C", "D", "F"}
	gradeIdx := fake.IntBetween(0, len(grades)-1)
	score := float64((4-gradeIdx)*20 + fake.IntBetween(0, 19))

	ingredients := []string{
		strings.ToLower(fake.Food().Fruit()),
		strings.ToLower(fake.Food().Vegetable()),
		"sugar",
	}
	if fake.Bool() {
		ingredients = append(ingredients, "wheat flour")
	}
	if fake.Bool() {
		ingredients = append(ingredients, "milk powder")
	}

	return map[string]any{
		"data": map[string]any{
			"original_product": map[string]any{
				"product_name":     name,
				"brand":            fake.Company().Name(),
				"ingredients_text": strings.Join(ingredients, ", "),
				"nutriments": map[string]any{
					"energy-kcal_100g":   float64(fake.IntBetween(50, 600)),
					"proteins_100g":      fake.Float64(1, 0, 30),
					"carbohydrates_100g": fake.Float64(1, 0, 80),
					"fat_100g":           fake.Float64(1, 0, 40),
				},
			},
			"gemini_analysis": map[string]any{
				"grade":     grades[gradeIdx],
				"score":     score,
				"reasoning": fake.Lorem().Sentence(8),
				"recommendations": []any{
					map[string]any{
						"name":                        fmt.Sprintf("%s %s", fake.Food().Vegetable(), kinds[fake.IntBetween(0, len(kinds)-1)]),
						"brand":                       fake.Company().Name(),
						"grade":                       "A",
						"score":                       float64(fake.IntBetween(80, 100)),
						"personalized_recommendation": fake.Lorem().Sentence(6),
					},
				},
			},
		},
	}
}
