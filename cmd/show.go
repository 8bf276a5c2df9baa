package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/render"
)

var showDiff bool

// previousRendering renders the grid as it was before the current diff.
func previousRendering(v *gridhistory.View[string], opts render.Options) (string, error) {
	if !v.CanRevert() {
		return render.Text(v.BaseGrid(), opts), nil
	}
	if err := v.RevertToPreviousDiff(); err != nil {
		return "", err
	}
	before := render.Text(v.BaseGrid(), opts)
	if err := v.ApplyNextDiff(); err != nil {
		return "", err
	}
	return before, nil
}

func writeLineDiff(w io.Writer, before, after string, color bool) {
	diff := render.LineDiff(before, after)
	if color {
		fmt.Fprintln(w, render.ColorLineDiff(diff))
		return
	}
	fmt.Fprint(w, diff)
}

var showCmd = &cobra.Command{
	Use:   "show REF...",
	Short: "Print the current grid of one or more histories",
	Long: `Print the current grid. With --diff, also print a line diff against the
grid as it was before the current diff.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		out := cmd.OutOrStdout()
		for i, ref := range args {
			rec, v, err := s.load(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			printState(out, s, rec, v)
			if showDiff {
				opts := s.renderOptions()
				before, err := previousRendering(v, opts)
				if err != nil {
					return err
				}
				writeLineDiff(out, before, render.Text(v.BaseGrid(), opts), s.cfg.Render.Color)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "print a line diff against the previous state")
	rootCmd.AddCommand(showCmd)
}
