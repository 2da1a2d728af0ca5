package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/sheetz/internal/screens/history"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent PDF generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.EventRepo().QueryGenerations(cmd.Context(), store.QueryOpts{Limit: limit, FailedOnly: failed})
		if err != nil {
			return fmt.Errorf("query generations: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No generations recorded yet.")
			return nil
		}

		for _, rec := range recs {
			fmt.Printf("%-5d  %s\n", rec.ID, history.Summary(rec))
			if verbose {
				for _, d := range history.Details(rec) {
					fmt.Println(strings.Repeat(" ", 7) + d)
				}
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of generations to show")
	historyCmd.Flags().BoolP("verbose", "v", false, "Show request ids, sizes and errors")
	historyCmd.Flags().Bool("failed", false, "Only show failed generations")
}
