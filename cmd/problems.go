package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/sheetz/internal/problem"
	"github.com/spf13/cobra"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "Manage the problem bank",
}

var problemsImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import problems from YAML or JSON files",
	Long: `Import problems from YAML or JSON files. Problems are upserted by id,
so re-importing a file updates existing entries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var total int
		for _, path := range args {
			ps, err := problem.LoadFile(path)
			if err != nil {
				return err
			}
			n, err := s.ProblemRepo().Upsert(cmd.Context(), ps)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			fmt.Printf("%s: %d problems\n", path, n)
			total += n
		}
		count, err := s.ProblemRepo().Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count problems: %w", err)
		}
		fmt.Printf("Imported %d problems (%d in bank).\n", total, count)
		return nil
	},
}

var problemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List problems matching a filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		sortVal, _ := cmd.Flags().GetString("sort")
		desc, _ := cmd.Flags().GetBool("desc")
		key, err := problem.ParseSortKey(sortVal)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ps, err := s.ProblemRepo().Query(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("query problems: %w", err)
		}
		if len(ps) == 0 {
			fmt.Println("No problems found.")
			return nil
		}
		printProblems(problem.Sort(ps, key, desc))
		return nil
	},
}

// addFilterFlags registers the flags read by filterFromFlags.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("subject", nil, "Subjects to include")
	cmd.Flags().String("chapter", "", `Chapter prefix, segments separated by "/"`)
	cmd.Flags().Int("min-difficulty", 0, "Minimum difficulty (1-5)")
	cmd.Flags().Int("max-difficulty", 0, "Maximum difficulty (1-5)")
	cmd.Flags().Float64("min-rate", -1, "Minimum correct rate in percent")
	cmd.Flags().Float64("max-rate", -1, "Maximum correct rate in percent")
	cmd.Flags().IntSlice("year", nil, "Exam years")
	cmd.Flags().StringSlice("exam", nil, "Exam types")
	cmd.Flags().StringSlice("tag", nil, "Required tags")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of problems (0 = all)")
}

func filterFromFlags(cmd *cobra.Command) (problem.Filter, error) {
	var f problem.Filter
	flags := cmd.Flags()
	f.Subjects, _ = flags.GetStringSlice("subject")
	if ch, _ := flags.GetString("chapter"); ch != "" {
		for _, seg := range strings.Split(ch, "/") {
			if seg = strings.TrimSpace(seg); seg != "" {
				f.ChapterPrefix = append(f.ChapterPrefix, seg)
			}
		}
	}
	f.MinDifficulty, _ = flags.GetInt("min-difficulty")
	f.MaxDifficulty, _ = flags.GetInt("max-difficulty")
	if v, _ := flags.GetFloat64("min-rate"); v >= 0 {
		f.MinCorrectRate = &v
	}
	if v, _ := flags.GetFloat64("max-rate"); v >= 0 {
		f.MaxCorrectRate = &v
	}
	f.ExamYears, _ = flags.GetIntSlice("year")
	f.ExamTypes, _ = flags.GetStringSlice("exam")
	f.Tags, _ = flags.GetStringSlice("tag")
	f.Limit, _ = flags.GetInt("limit")
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

func printProblems(ps []problem.Problem) {
	fmt.Printf("%-24s  %-10s  %-3s  %-6s  %-18s  %s\n",
		"ID", "Subject", "Lv", "Rate", "Exam", "Chapter")
	fmt.Println(rule(100))
	for _, p := range ps {
		lv := "-"
		if p.Difficulty > 0 {
			lv = fmt.Sprintf("%d", p.Difficulty)
		}
		rate := "-"
		if p.HasCorrectRate() {
			rate = fmt.Sprintf("%.0f%%", p.CorrectRate)
		}
		fmt.Printf("%-24s  %-10s  %-3s  %-6s  %-18s  %s\n",
			truncate(p.ID, 24), truncate(p.Subject, 10), lv, rate,
			truncate(p.ExamLabel(), 18), p.Chapter())
	}
	fmt.Printf("\n%d problems\n", len(ps))
}

func init() {
	addFilterFlags(problemsListCmd)
	problemsListCmd.Flags().String("sort", "", "Sort by order, difficulty, chapter, correct-rate or exam-year")
	problemsListCmd.Flags().Bool("desc", false, "Reverse the sort order")

	problemsCmd.AddCommand(problemsImportCmd)
	problemsCmd.AddCommand(problemsListCmd)
}
