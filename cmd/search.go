package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/sheetz/internal/llm"
	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/search"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find problems with a natural-language request",
	Long: `Translate a request such as "hard chain rule problems from 2023 mock
exams" into a filter with the configured LLM and list the matches.
Use --save to keep the result as a worksheet.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("save", "", "Save the matches as a worksheet with this title")
	searchCmd.Flags().String("author", "", "Author of the saved worksheet")
	searchCmd.Flags().Bool("answers", true, "Include the answer key in the saved worksheet")
	searchCmd.Flags().Bool("badges", false, "Show metadata badges in the saved worksheet")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	provider, cfg, err := llm.NewProviderFromEnv(ctx, s.EventRepo())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	query := strings.Join(args, " ")
	fmt.Printf("Searching with %s (%s)...\n", cfg.Provider, provider.ModelID())
	res, err := search.New(provider, s.ProblemRepo(), search.DefaultConfig()).Search(ctx, query)
	if err != nil {
		return err
	}

	if res.Summary != "" {
		fmt.Println(res.Summary)
	}
	if res.Sort != problem.SortNone {
		dir := "ascending"
		if res.Descending {
			dir = "descending"
		}
		fmt.Printf("Sorted by %s, %s\n", res.Sort, dir)
	}
	fmt.Println()
	if len(res.Problems) == 0 {
		fmt.Println("No problems matched.")
		return nil
	}
	printProblems(res.Problems)

	title, _ := cmd.Flags().GetString("save")
	if title == "" {
		return nil
	}
	ws := store.Worksheet{
		Title:      title,
		ProblemIDs: make([]string, len(res.Problems)),
	}
	ws.Author, _ = cmd.Flags().GetString("author")
	ws.IncludeAnswers, _ = cmd.Flags().GetBool("answers")
	ws.ShowBadges, _ = cmd.Flags().GetBool("badges")
	for i, p := range res.Problems {
		ws.ProblemIDs[i] = p.ID
	}
	ws, err = s.WorksheetRepo().Create(ctx, ws)
	if err != nil {
		return err
	}
	fmt.Printf("\nSaved worksheet %s\n", ws.ID)
	return nil
}
