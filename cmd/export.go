package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/sheetz/internal/imageload"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/abhisek/sheetz/internal/worksheet"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <worksheet-id|build.yaml>",
	Short: "Generate the worksheet PDF",
	Long: `Generate a worksheet PDF from a saved worksheet or a YAML build file.
Images that cannot be loaded are replaced with a placeholder and reported
as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output directory (default: build file output or current directory)")
	exportCmd.Flags().Bool("no-answers", false, "Leave out the answer key")
	exportCmd.Flags().Bool("print", false, "Send the PDF to the printer after saving")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	req, outDir, err := exportRequest(cmd, s, args[0])
	if err != nil {
		return err
	}
	if noAnswers, _ := cmd.Flags().GetBool("no-answers"); noAnswers {
		req.IncludeAnswers = false
	}
	if dir, _ := cmd.Flags().GetString("out"); dir != "" {
		outDir = dir
	}

	gen := newGenerator(s, func(e *imageload.LoadError) {
		fmt.Fprintf(os.Stderr, "warning: %v (using placeholder)\n", e)
	})
	fmt.Printf("Generating %q (%d problems)...\n", req.Title, len(req.Problems))
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	path, err := worksheet.Save(res, outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d pages, %s)\n", path, res.Pages, res.Duration.Round(time.Millisecond))
	if res.Placeholders > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d images replaced with placeholders\n", res.Placeholders)
	}

	if p, _ := cmd.Flags().GetBool("print"); p {
		if err := worksheet.Print(ctx, path, worksheet.PrintConfigFromEnv()); err != nil {
			return err
		}
		fmt.Println("Sent to printer.")
	}
	return nil
}

// exportRequest builds the generation request for a worksheet id or a
// build file path, along with the build file's output directory.
func exportRequest(cmd *cobra.Command, s *store.Store, target string) (worksheet.Request, string, error) {
	if isBuildFile(target) {
		bf, err := worksheet.LoadBuildFile(target)
		if err != nil {
			return worksheet.Request{}, "", err
		}
		problems, err := bf.Resolve(cmd.Context(), s.ProblemRepo())
		if err != nil {
			return worksheet.Request{}, "", err
		}
		return bf.Request(nil, problems), bf.Output, nil
	}

	ws, problems, err := loadWorksheet(cmd.Context(), s, target)
	if err != nil {
		return worksheet.Request{}, "", err
	}
	req := worksheet.NewRequest(nil, ws.Title, ws.Author, problems)
	req.WorksheetID = ws.ID
	req.IncludeAnswers = ws.IncludeAnswers
	req.ShowBadges = ws.ShowBadges
	return req, "", nil
}

func isBuildFile(target string) bool {
	switch strings.ToLower(filepath.Ext(target)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// newGenerator wires the generation pipeline to the store. onLoadError may
// be nil.
func newGenerator(s *store.Store, onLoadError imageload.ErrorHandler) *worksheet.Generator {
	var opts []imageload.Option
	if onLoadError != nil {
		opts = append(opts, imageload.WithErrorHandler(onLoadError))
	}
	m := imageload.NewMeasurer(imageload.ConfigFromEnv(), opts...)
	return worksheet.NewGenerator(m,
		worksheet.WithOverrides(s.OverrideRepo()),
		worksheet.WithEvents(s.EventRepo()),
	)
}
