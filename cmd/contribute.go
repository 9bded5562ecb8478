package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pickbetter/labelscan/internal/client"
)

var (
	contributeNutritionImage   string
	contributeIngredientsImage string
	contributeProductName      string
	contributeBrand            string
)

var contributeCmd = &cobra.Command{
	Use:   "contribute <barcode>",
	Short: "Submit label photos for a product missing from the catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		nutrition, nutritionSize, err := openImage(contributeNutritionImage)
		if err != nil {
			return err
		}
		defer nutrition.Close()

		in := client.ContributionInput{
			Barcode:        args[0],
			ProductName:    contributeProductName,
			Brand:          contributeBrand,
			NutritionName:  filepath.Base(contributeNutritionImage),
			NutritionImage: nutrition,
		}

		total := nutritionSize
		if contributeIngredientsImage != "" {
			ingredients, size, err := openImage(contributeIngredientsImage)
			if err != nil {
				return err
			}
			defer ingredients.Close()
			in.IngredientsName = filepath.Base(contributeIngredientsImage)
			in.IngredientsImage = ingredients
			total += size
		}

		bar := progressbar.DefaultBytes(total, "uploading")
		in.NutritionImage = io.TeeReader(in.NutritionImage, bar)
		if in.IngredientsImage != nil {
			in.IngredientsImage = io.TeeReader(in.IngredientsImage, bar)
		}

		res, analysis, err := app.coord.Contribute(ctx, in)
		bar.Finish()
		if err != nil {
			return err
		}

		fmt.Println(res.Message)
		if analysis != nil {
			printAnalysis(analysis)
		}
		return nil
	},
}

func init() {
	contributeCmd.Flags().StringVar(&contributeNutritionImage, "nutrition-image", "", "Photo of the nutrition label (required)")
	contributeCmd.Flags().StringVar(&contributeIngredientsImage, "ingredients-image", "", "Photo of the ingredients list")
	contributeCmd.Flags().StringVar(&contributeProductName, "name", "", "Product name as printed on the package")
	contributeCmd.Flags().StringVar(&contributeBrand, "brand", "", "Brand name")
	contributeCmd.MarkFlagRequired("nutrition-image")
	rootCmd.AddCommand(contributeCmd)
}

func openImage(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open image %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}
