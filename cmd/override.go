package cmd

import (
	"fmt"

	"github.com/abhisek/sheetz/internal/problem"
	"github.com/spf13/cobra"
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage edited problem and answer images",
	Long: `Overrides replace the default image of a problem or answer with an
edited version. Generation always prefers an override when one exists.`,
}

var overrideSetCmd = &cobra.Command{
	Use:   "set <problem|answer> <problem-id> <image-url>",
	Short: "Use an edited image for a problem or answer",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := problem.ParseResourceKind(args[0])
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.ProblemRepo().Get(cmd.Context(), []string{args[1]}); err != nil {
			return err
		}
		if err := s.OverrideRepo().Set(cmd.Context(), kind, args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("Override set for %s %s\n", kind, args[1])
		return nil
	},
}

var overrideDeleteCmd = &cobra.Command{
	Use:     "delete <problem|answer> <problem-id>",
	Aliases: []string{"rm"},
	Short:   "Revert to the original image",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := problem.ParseResourceKind(args[0])
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.OverrideRepo().Delete(cmd.Context(), kind, args[1])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("No override for %s %s\n", kind, args[1])
			return nil
		}
		fmt.Printf("Override removed for %s %s\n", kind, args[1])
		return nil
	},
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.OverrideRepo().List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No overrides.")
			return nil
		}

		fmt.Printf("%-8s  %-24s  %-16s  %s\n", "Kind", "Problem", "Updated", "URL")
		fmt.Println(rule(100))
		for _, o := range list {
			fmt.Printf("%-8s  %-24s  %-16s  %s\n",
				o.Kind,
				truncate(o.ResourceID, 24),
				o.UpdatedAt.Local().Format("2006-01-02 15:04"),
				o.URL,
			)
		}
		return nil
	},
}

func init() {
	overrideCmd.AddCommand(overrideSetCmd)
	overrideCmd.AddCommand(overrideListCmd)
	overrideCmd.AddCommand(overrideDeleteCmd)
}
