package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/render"
)

var (
	logChanges  bool
	logMarkdown bool
)

func marker(current bool) string {
	if current {
		return "*"
	}
	return " "
}

// writeLog lists the diffs of v; the entry at the cursor is starred.
func writeLog(w io.Writer, v *gridhistory.View[string], withChanges bool) {
	cursor := v.CurrentDiffIndex()
	fmt.Fprintf(w, "%s base\n", marker(cursor == -1))
	for i, d := range v.Diffs() {
		fmt.Fprintf(w, "%s diff %d: %d change(s), %s\n", marker(cursor == i), i+1, d.Len(), d.State())
		if !withChanges {
			continue
		}
		for _, c := range d.All() {
			fmt.Fprintf(w, "    %s: %q -> %q\n", c.Position, c.OldValue, c.NewValue)
		}
	}
}

var logCmd = &cobra.Command{
	Use:   "log REF",
	Short: "List the diffs of a history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		rec, v, err := s.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if logMarkdown {
			md, err := render.NewMarkdown(80, s.cfg.Render.Color)
			if err != nil {
				return err
			}
			out, err := md.Render(render.Report(rec.Name, rec.GUID, v, s.renderOptions()))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %dx%d\n", rec.Name, rec.GUID, rec.Width, rec.Height)
		writeLog(cmd.OutOrStdout(), v, logChanges)
		return nil
	},
}

func init() {
	logCmd.Flags().BoolVarP(&logChanges, "changes", "p", false, "list every change of each diff")
	logCmd.Flags().BoolVar(&logMarkdown, "markdown", false, "print a formatted report instead")
	rootCmd.AddCommand(logCmd)
}
