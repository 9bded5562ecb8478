package export

import (
	"strconv"
	"strings"

	"github.com/pickbetter/labelscan/internal/models"
)

// Record is the flat row shape shared by every export format.
type Record struct {
	ItemID    string  `json:"item_id" parquet:"name=item_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Name      string  `json:"name" parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Brand     string  `json:"brand" parquet:"name=brand, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Grade     string  `json:"grade" parquet:"name=grade, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Score     float64 `json:"score" parquet:"name=score, type=DOUBLE"`
	ScannedAt string  `json:"scanned_at" parquet:"name=scanned_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Calories  string  `json:"calories" parquet:"name=calories, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Protein   string  `json:"protein" parquet:"name=protein, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Carbs     string  `json:"carbs" parquet:"name=carbs, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Fat       string  `json:"fat" parquet:"name=fat, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Allergens string  `json:"allergens" parquet:"name=allergens, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

func toRecord(item models.HistoryItem) Record {
	return Record{
		ItemID:    item.ID,
		Name:      item.Name,
		Brand:     item.Brand,
		Grade:     item.Grade,
		Score:     item.Score,
		ScannedAt: item.ScannedAt,
		Calories:  item.Analysis.Macros.Calories,
		Protein:   item.Analysis.Macros.Protein,
		Carbs:     item.Analysis.Macros.Carbs,
		Fat:       item.Analysis.Macros.Fat,
		Allergens: strings.Join(item.Analysis.DetectedAllergens, ";"),
	}
}

var csvHeader = []string{
	"item_id", "name", "brand", "grade", "score", "scanned_at",
	"calories", "protein", "carbs", "fat", "allergens",
}

func (r Record) csvRow() []string {
	return []string{
		r.ItemID, r.Name, r.Brand, r.Grade,
		strconv.FormatFloat(r.Score, 'f', -1, 64), r.ScannedAt,
		r.Calories, r.Protein, r.Carbs, r.Fat, r.Allergens,
	}
}
