package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pickbetter/labelscan/internal/models"
	"github.com/pickbetter/labelscan/internal/normalize"
	"github.com/pickbetter/labelscan/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [barcode...]",
	Short: "Look up one or more barcodes and show the analysis",
	Long: `Scan looks up each barcode against the analysis service. With no
arguments it reads barcodes from stdin, one per line, which suits a
hardware scanner that types codes followed by enter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		var src scanner.BarcodeSource
		if len(args) > 0 {
			src = &scanner.StaticSource{Codes: args}
		} else {
			fmt.Println("Reading barcodes from stdin, one per line. Ctrl-D to stop.")
			src = &scanner.ReaderSource{R: os.Stdin}
		}

		return app.coord.Run(ctx, src, printOutcome)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func printOutcome(out normalize.Outcome) {
	switch out.Kind {
	case normalize.ContributionNeeded:
		fmt.Printf("Barcode %s is not in the catalogue yet.\n", out.Barcode)
		fmt.Println("Run 'labelscan contribute' with label photos to add it.")
	case normalize.ScanFailed:
		fmt.Printf("Scan of %s failed: %s\n", out.Barcode, out.Message)
	default:
		printAnalysis(out.Analysis)
	}
}

func printAnalysis(an *models.FoodAnalysis) {
	fmt.Printf("\n%s", an.ProductName)
	if an.Brand != "" {
		fmt.Printf(" (%s)", an.Brand)
	}
	fmt.Printf("\nGrade %s  Score %g\n", an.Grade, an.Score)
	if an.Reason != "" {
		fmt.Println(an.Reason)
	}
	fmt.Printf("Calories %s  Protein %s  Carbs %s  Fat %s\n",
		an.Macros.Calories, an.Macros.Protein, an.Macros.Carbs, an.Macros.Fat)
	if len(an.DetectedAllergens) > 0 {
		fmt.Printf("Contains your allergens: %s\n", strings.Join(an.DetectedAllergens, ", "))
	}
	for _, alt := range an.Alternatives {
		fmt.Printf("Try instead: %s (%s, grade %s, score %g)", alt.Name, alt.Brand, alt.Grade, alt.Score)
		if alt.Reason != "" {
			fmt.Printf(": %s", alt.Reason)
		}
		fmt.Println()
	}
	fmt.Println()
}
