package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockpile/database/seeders"
	"github.com/shashiranjanraj/stockpile/pkg/app"
)

// stockpile seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo seller, customer and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Seeding…")
		if err := seeders.RunAll(cmd.Context(), a, out); err != nil {
			return err
		}
		fmt.Fprintln(out, "Seeding complete.")
		return nil
	},
}
