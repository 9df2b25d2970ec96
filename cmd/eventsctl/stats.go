package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the catalogue overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := repo.EventStats(cmd.Context())
		if err != nil {
			return err
		}
		if statsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func printStats(w io.Writer, s *models.EventStats) {
	t := s.Totals
	fmt.Fprintf(w, "Total:    %d\n", t.Total)
	fmt.Fprintf(w, "Active:   %d\n", t.Active)
	fmt.Fprintf(w, "New:      %d\n", t.New)
	fmt.Fprintf(w, "Updated:  %d\n", t.Updated)
	fmt.Fprintf(w, "Imported: %d\n", t.Imported)
	fmt.Fprintf(w, "Inactive: %d\n", t.Inactive)

	printCounts(w, "Categories", s.Categories)
	printCounts(w, "Sources", s.Sources)
}

func printCounts(w io.Writer, title string, rows []models.CountRow) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-24s %d\n", r.ID, r.Count)
	}
}
