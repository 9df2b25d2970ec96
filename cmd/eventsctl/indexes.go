package main

import (
	"fmt"
	"sort"

	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create all collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		specs := models.IndexSpecs()
		names := make([]string, 0, len(specs))
		for col := range specs {
			names = append(names, col)
		}
		sort.Strings(names)
		for _, col := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d indexes\n", col, len(specs[col]))
		}
		return nil
	},
}
