package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/abhisek/sheetz/internal/worksheet"
	"github.com/spf13/cobra"
)

var worksheetCmd = &cobra.Command{
	Use:     "worksheet",
	Aliases: []string{"ws"},
	Short:   "Create and inspect saved worksheets",
}

var worksheetCreateCmd = &cobra.Command{
	Use:   "create [problem-id]...",
	Short: "Save a worksheet from problem ids, a filter or a build file",
	Long: `Save a worksheet. Problems are selected by explicit ids, by the filter
flags, or by a YAML build file passed with --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		var bf *worksheet.BuildFile
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			if len(args) > 0 {
				return fmt.Errorf("problem ids cannot be combined with --file")
			}
			if bf, err = worksheet.LoadBuildFile(path); err != nil {
				return err
			}
		} else if bf, err = buildFileFromFlags(cmd, args); err != nil {
			return err
		}

		problems, err := bf.Resolve(ctx, s.ProblemRepo())
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			return fmt.Errorf("no problems selected")
		}

		ws := store.Worksheet{
			Title:          bf.Title,
			Author:         bf.Author,
			ProblemIDs:     make([]string, len(problems)),
			IncludeAnswers: bf.Answers(),
			ShowBadges:     bf.Badges,
		}
		for i, p := range problems {
			ws.ProblemIDs[i] = p.ID
		}
		// Resolve already ordered the ids; a descending sort is kept as
		// that order rather than re-applied on open.
		if !bf.Descending {
			ws.SortKey, _ = problem.ParseSortKey(bf.Sort)
		}

		ws, err = s.WorksheetRepo().Create(ctx, ws)
		if err != nil {
			return err
		}
		fmt.Printf("Created worksheet %s (%d problems)\n", ws.ID, len(ws.ProblemIDs))
		return nil
	},
}

var worksheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved worksheets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.WorksheetRepo().List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No worksheets yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-28s  %-16s  %s\n", "ID", "Created", "Title", "Author", "Problems")
		fmt.Println(rule(110))
		for _, ws := range list {
			fmt.Printf("%-36s  %-16s  %-28s  %-16s  %d\n",
				ws.ID,
				ws.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(ws.Title, 28),
				truncate(ws.Author, 16),
				len(ws.ProblemIDs),
			)
		}
		return nil
	},
}

var worksheetShowCmd = &cobra.Command{
	Use:   "show <worksheet-id>",
	Short: "Show a worksheet and its problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ws, problems, err := loadWorksheet(cmd.Context(), s, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", ws.ID)
		fmt.Printf("Title:     %s\n", ws.Title)
		if ws.Author != "" {
			fmt.Printf("Author:    %s\n", ws.Author)
		}
		fmt.Printf("Created:   %s\n", ws.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Sort:      %s\n", ws.SortKey)
		fmt.Printf("Answers:   %v\n", ws.IncludeAnswers)
		fmt.Printf("Badges:    %v\n", ws.ShowBadges)
		fmt.Printf("File:      %s\n", worksheet.Filename(ws.Title, ws.Author))
		fmt.Println()
		printProblems(problems)
		return nil
	},
}

// buildFileFromFlags assembles an in-memory build file from create flags.
func buildFileFromFlags(cmd *cobra.Command, ids []string) (*worksheet.BuildFile, error) {
	flags := cmd.Flags()
	bf := &worksheet.BuildFile{Problems: ids}
	bf.Title, _ = flags.GetString("title")
	bf.Author, _ = flags.GetString("author")
	bf.Sort, _ = flags.GetString("sort")
	bf.Descending, _ = flags.GetBool("desc")
	bf.Badges, _ = flags.GetBool("badges")
	answers, _ := flags.GetBool("answers")
	bf.IncludeAnswers = &answers

	if len(ids) == 0 {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		bf.Filter = &f
	}
	if err := bf.Validate(); err != nil {
		return nil, err
	}
	return bf, nil
}

// loadWorksheet returns a saved worksheet with its problems in worksheet
// order.
func loadWorksheet(ctx context.Context, s *store.Store, id string) (*store.Worksheet, []problem.Problem, error) {
	ws, err := s.WorksheetRepo().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	problems, err := s.ProblemRepo().Get(ctx, ws.ProblemIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load problems of %s: %w", ws.Title, err)
	}
	return ws, problem.Sort(problems, ws.SortKey, false), nil
}

func init() {
	worksheetCreateCmd.Flags().StringP("file", "f", "", "YAML build file")
	worksheetCreateCmd.Flags().StringP("title", "t", "", "Worksheet title")
	worksheetCreateCmd.Flags().StringP("author", "a", "", "Author shown in the file name and PDF metadata")
	worksheetCreateCmd.Flags().String("sort", "", "Sort by order, difficulty, chapter, correct-rate or exam-year")
	worksheetCreateCmd.Flags().Bool("desc", false, "Reverse the sort order")
	worksheetCreateCmd.Flags().Bool("answers", true, "Append the answer key")
	worksheetCreateCmd.Flags().Bool("badges", false, "Show metadata badges above problems")
	addFilterFlags(worksheetCreateCmd)

	worksheetListCmd.Flags().IntP("limit", "n", 50, "Number of worksheets to show")

	worksheetCmd.AddCommand(worksheetCreateCmd)
	worksheetCmd.AddCommand(worksheetListCmd)
	worksheetCmd.AddCommand(worksheetShowCmd)
}
