package cmd

import (
	"github.com/abhisek/sheetz/internal/app"
	"github.com/abhisek/sheetz/internal/screen"
	"github.com/abhisek/sheetz/internal/screens/preview"
	"github.com/abhisek/sheetz/internal/screens/worksheets"
	"github.com/abhisek/sheetz/internal/worksheet"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI. With a
// worksheet id the preview opens directly.
func runApp(cmd *cobra.Command, worksheetID string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	outDir, _ := cmd.Flags().GetString("out")
	gen := newGenerator(st, nil)
	popts := preview.Options{
		OutputDir: outDir,
		Print:     worksheet.PrintConfigFromEnv(),
	}

	var initial screen.Screen
	if worksheetID == "" {
		initial = worksheets.New(worksheets.Deps{
			Worksheets: st.WorksheetRepo(),
			Problems:   st.ProblemRepo(),
			Events:     st.EventRepo(),
			Generator:  gen,
			Preview:    popts,
		})
	} else {
		ws, problems, err := loadWorksheet(cmd.Context(), st, worksheetID)
		if err != nil {
			return err
		}
		popts.WorksheetID = ws.ID
		popts.Title = ws.Title
		popts.Author = ws.Author
		popts.Problems = problems
		popts.IncludeAnswers = ws.IncludeAnswers
		popts.ShowBadges = ws.ShowBadges
		initial = preview.New(gen, popts)
	}

	return app.Run(initial, resolveVersion(version, readModuleVersion()))
}

var previewCmd = &cobra.Command{
	Use:   "preview <worksheet-id>",
	Short: "Open the interactive preview of a saved worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

func init() {
	rootCmd.Flags().StringP("out", "o", "", "Download directory for previewed PDFs (default: current directory)")
	previewCmd.Flags().StringP("out", "o", "", "Download directory for the PDF (default: current directory)")
}
