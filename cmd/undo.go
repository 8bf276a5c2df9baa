package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/gridhistory"
)

// stepFlags are shared by undo and redo.
type stepFlags struct {
	count int
	all   bool
}

func (f *stepFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().IntVarP(&f.count, "count", "n", 1, "number of diffs to "+verb)
	cmd.Flags().BoolVar(&f.all, "all", false, verb+" every diff")
}

// stepN calls step up to n times, stopping early when can reports false.
// Returns how many steps were taken.
func stepN(n int, can func() bool, step func() error) (int, error) {
	taken := 0
	for ; taken < n && can(); taken++ {
		if err := step(); err != nil {
			return taken, err
		}
	}
	return taken, nil
}

func runStep(cmd *cobra.Command, ref string, f stepFlags, forward bool) error {
	if f.count < 1 && !f.all {
		return fmt.Errorf("--count must be at least 1, got %d", f.count)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx := cmd.Context()
	rec, v, err := s.load(ctx, ref)
	if err != nil {
		return err
	}

	n := f.count
	if f.all {
		n = v.Len()
	}
	var taken int
	if forward {
		taken, err = stepN(n, v.CanApplyNext, v.ApplyNextDiff)
	} else {
		taken, err = stepN(n, v.CanRevert, v.RevertToPreviousDiff)
	}
	if err != nil {
		return err
	}
	if taken == 0 {
		if forward {
			return fmt.Errorf("%w: nothing to redo", gridhistory.ErrInvalidState)
		}
		return fmt.Errorf("%w: nothing to undo", gridhistory.ErrInvalidState)
	}

	if err := s.save(ctx, rec, v); err != nil {
		return err
	}
	printState(cmd.OutOrStdout(), s, rec, v)
	return nil
}

var undoFlags stepFlags

var undoCmd = &cobra.Command{
	Use:   "undo REF",
	Short: "Revert the most recent diff(s)",
	Long: `Move the cursor back by reverting diffs. Reverted diffs are kept and can be
re-applied with redo until the next edit with --truncate.

Examples:
  gridhist undo level1
  gridhist undo level1 -n 3
  gridhist undo level1 --all`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(cmd, args[0], undoFlags, false)
	},
}

var redoFlags stepFlags

var redoCmd = &cobra.Command{
	Use:   "redo REF",
	Short: "Re-apply reverted diff(s)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(cmd, args[0], redoFlags, true)
	},
}

func init() {
	undoFlags.register(undoCmd, "undo")
	redoFlags.register(redoCmd, "redo")
	rootCmd.AddCommand(undoCmd, redoCmd)
}
