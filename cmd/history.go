package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your scan history, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		items, err := app.store.List(ctx, app.userID(), historyLimit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No scans yet.")
			return nil
		}
		for _, item := range items {
			brand := item.Brand
			if brand == "" {
				brand = "unknown brand"
			}
			fmt.Printf("%-22s %s (%s)  grade %s  score %g\n",
				item.ScannedAt, item.Name, brand, item.Grade, item.Score)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete your scan history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.Clear(ctx, app.userID()); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show at most this many entries (0 means all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
