package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/pickbetter/labelscan/internal/models"
)

func sampleItems() []models.HistoryItem {
	return []models.HistoryItem{
		{
			ID:        "1757064600000",
			Name:      "Choco Bar",
			Brand:     "Sweet Co",
			Grade:     "D",
			Score:     40,
			ScannedAt: "Mar 5, 2026 9:30 AM",
			Analysis: models.FoodAnalysis{
				ProductName:       "Choco Bar",
				Grade:             "D",
				Score:             40,
				Macros:            models.Macros{Calories: "500 kcal", Protein: "N/A", Carbs: "N/A", Fat: "N/A"},
				DetectedAllergens: []string{"Wheat/Gluten", "Milk/Dairy"},
			},
		},
		{
			ID:        "1757064660000",
			Name:      "Granola",
			Brand:     "Oaty",
			Grade:     "A",
			Score:     90,
			ScannedAt: "Mar 5, 2026 9:31 AM",
			Analysis: models.FoodAnalysis{
				ProductName: "Granola",
				Grade:       "A",
				Score:       90,
				Macros:      models.Macros{Calories: "380 kcal", Protein: "12g", Carbs: "60g", Fat: "8g"},
			},
		},
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(sampleItems(), models.ExportConfig{Format: "json", OutputPath: dir})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Fatalf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Name != "Choco Bar" || records[0].Calories != "500 kcal" {
		t.Fatalf("record = %+v", records[0])
	}
	if records[0].Allergens != "Wheat/Gluten;Milk/Dairy" {
		t.Fatalf("allergens = %q", records[0].Allergens)
	}
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(sampleItems(), models.ExportConfig{Format: "csv", OutputPath: dir})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "item_id" || rows[0][4] != "score" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "Choco Bar" || rows[1][4] != "40" {
		t.Fatalf("row = %v", rows[1])
	}
	if rows[2][1] != "Granola" || rows[2][3] != "A" {
		t.Fatalf("row = %v", rows[2])
	}
}

func TestExportParquet(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(sampleItems(), models.ExportConfig{Format: "parquet", OutputPath: dir})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(Record), 4)
	if err != nil {
		t.Fatalf("NewParquetReader: %v", err)
	}
	defer pr.ReadStop()

	if pr.GetNumRows() != 2 {
		t.Fatalf("rows = %d, want 2", pr.GetNumRows())
	}
	records := make([]Record, 2)
	if err := pr.Read(&records); err != nil {
		t.Fatalf("read records: %v", err)
	}
	if records[0].Name != "Choco Bar" || records[0].Score != 40 {
		t.Fatalf("record = %+v", records[0])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export(nil, models.ExportConfig{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
