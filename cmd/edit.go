package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/log"
)

var editTruncate bool

// assignment is one X,Y=VALUE argument.
type assignment struct {
	Pos   grid.Point
	Value string
}

// parseAssignment parses "X,Y=VALUE". VALUE may be empty to clear a cell.
func parseAssignment(s string) (assignment, error) {
	coords, value, ok := strings.Cut(s, "=")
	if !ok {
		return assignment{}, fmt.Errorf("invalid assignment %q: want X,Y=VALUE", s)
	}
	xs, ys, ok := strings.Cut(coords, ",")
	if !ok {
		return assignment{}, fmt.Errorf("invalid position %q: want X,Y", coords)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return assignment{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return assignment{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return assignment{Pos: grid.Pt(x, y), Value: value}, nil
}

// applyEdits writes every assignment into v as one diff and finalizes it.
// With truncate, diffs after the cursor are discarded first.
func applyEdits(v *gridhistory.View[string], edits []assignment, truncate bool) error {
	if truncate && v.CanApplyNext() {
		kept := v.Diffs()[:v.CurrentDiffIndex()+1]
		if len(kept) == 0 {
			v.ClearHistory()
		} else if err := v.SetHistoryAtHead(kept); err != nil {
			return err
		}
	}

	for _, e := range edits {
		if e.Pos.X < 0 || e.Pos.X >= v.Width() || e.Pos.Y < 0 || e.Pos.Y >= v.Height() {
			return fmt.Errorf("position %s is outside the %dx%d grid", e.Pos, v.Width(), v.Height())
		}
	}
	for _, e := range edits {
		if err := v.Set(e.Pos, e.Value); err != nil {
			if errors.Is(err, gridhistory.ErrInvalidState) {
				return fmt.Errorf("%w (use --truncate to discard the %d undone diff(s))",
					err, v.Len()-v.CurrentDiffIndex()-1)
			}
			return err
		}
	}
	return v.FinalizeCurrentDiff()
}

var editCmd = &cobra.Command{
	Use:   "edit REF X,Y=VALUE...",
	Short: "Write cells as a single new diff",
	Long: `Write one or more cells. All writes of one invocation form one diff;
writes that leave a cell unchanged are not recorded.

Editing is only possible at the head of the history. After undo, either redo
or pass --truncate to drop the undone diffs.

Examples:
  gridhist edit level1 0,0=# 1,0=#
  gridhist edit level1 3,2=     # clear a cell`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		edits := make([]assignment, 0, len(args)-1)
		for _, a := range args[1:] {
			e, err := parseAssignment(a)
			if err != nil {
				return err
			}
			edits = append(edits, e)
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		ctx := cmd.Context()
		rec, v, err := s.load(ctx, args[0])
		if err != nil {
			return err
		}
		before := v.Len()
		if err := applyEdits(v, edits, editTruncate); err != nil {
			return err
		}
		if err := s.save(ctx, rec, v); err != nil {
			return err
		}

		log.Info(log.CatCLI, "Edited history", "guid", rec.GUID, "writes", len(edits), "diffs", v.Len())
		if v.Len() == before && !editTruncate {
			fmt.Fprintln(cmd.ErrOrStderr(), "no cell changed; nothing recorded")
		}
		printState(cmd.OutOrStdout(), s, rec, v)
		return nil
	},
}

func init() {
	editCmd.Flags().BoolVar(&editTruncate, "truncate", false, "discard undone diffs before editing")
	rootCmd.AddCommand(editCmd)
}
