package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pickbetter/labelscan/internal/client"
	"github.com/pickbetter/labelscan/internal/models"
)

var (
	profileName       string
	profileAge        int
	profileSex        string
	profileHeight     float64
	profileWeight     float64
	profileConditions []string
	profileAllergens  []string
	profileDiet       string
	profileGoal       string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the stored health profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := models.DefaultProfilePath()
		if err != nil {
			return err
		}
		profile, err := models.LoadProfileFile(path)
		if err != nil {
			return err
		}
		if profile == nil {
			fmt.Println("No profile yet. Run 'labelscan profile set' to create one.")
			return nil
		}

		fmt.Printf("Name: %s\nAge: %d  Sex: %s\nHeight: %.0f cm  Weight: %.1f kg\n",
			profile.Name, profile.Age, profile.Sex, profile.HeightCm, profile.WeightKg)
		fmt.Printf("Conditions: %s\n", orNone(profile.Conditions))
		fmt.Printf("Allergens: %s\n", orNone(profile.Allergens))
		fmt.Printf("Diet: %s  Goal: %s\n", profile.DietType, profile.PrimaryGoal)
		if len(profile.CustomNeeds) > 0 {
			fmt.Printf("Custom needs (%s): %s\n", profile.CustomNeedsStatus, strings.Join(profile.CustomNeeds, ", "))
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the health profile and sync it to the backend",
	Long: `Set updates the local profile. Conditions and allergens outside the
standard lists are treated as custom needs and queued for review on
the backend. When signed in and online the profile is pushed to the
backend as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		profile := app.profile
		if cmd.Flags().Changed("name") {
			profile.Name = profileName
		}
		if cmd.Flags().Changed("age") {
			profile.Age = profileAge
		}
		if cmd.Flags().Changed("sex") {
			profile.Sex = profileSex
		}
		if cmd.Flags().Changed("height") {
			profile.HeightCm = profileHeight
		}
		if cmd.Flags().Changed("weight") {
			profile.WeightKg = profileWeight
		}
		if cmd.Flags().Changed("conditions") {
			profile.Conditions = profileConditions
		}
		if cmd.Flags().Changed("allergens") {
			profile.Allergens = profileAllergens
		}
		if cmd.Flags().Changed("diet") {
			profile.DietType = profileDiet
		}
		if cmd.Flags().Changed("goal") {
			profile.PrimaryGoal = profileGoal
		}

		_, custom := profile.SplitCustomNeeds()
		profile.CustomNeeds = custom
		if len(custom) > 0 && profile.CustomNeedsStatus == "" {
			profile.CustomNeedsStatus = "pending"
		}

		if c, ok := app.backend.(*client.Client); ok && app.session != nil {
			res, err := c.SaveProfile(ctx, profile)
			if err != nil {
				return err
			}
			profile.CustomNeeds = res.CustomNeeds
			profile.CustomNeedsStatus = res.CustomNeedsStatus
		}

		path, err := models.DefaultProfilePath()
		if err != nil {
			return err
		}
		if err := models.SaveProfileFile(path, profile); err != nil {
			return err
		}

		fmt.Println("Profile saved.")
		if len(profile.CustomNeeds) > 0 {
			fmt.Printf("Custom needs pending review: %s\n", strings.Join(profile.CustomNeeds, ", "))
		}
		return nil
	},
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years")
	profileSetCmd.Flags().StringVar(&profileSex, "sex", "", "Sex")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	profileSetCmd.Flags().StringSliceVar(&profileConditions, "conditions", nil, "Health conditions (comma separated)")
	profileSetCmd.Flags().StringSliceVar(&profileAllergens, "allergens", nil, "Allergens (comma separated)")
	profileSetCmd.Flags().StringVar(&profileDiet, "diet", "", "Dietary preference")
	profileSetCmd.Flags().StringVar(&profileGoal, "goal", "", "Primary goal")
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
