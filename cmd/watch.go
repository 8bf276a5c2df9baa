package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/codec"
	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/store"
	"github.com/zjrosen/gridhist/internal/watcher"
)

var watchStore bool

// reportDocument loads and validates the document at path and prints its state.
// Invalid documents are reported, not fatal: the next save may fix them.
func reportDocument(ctx context.Context, w io.Writer, s *session, path string) {
	doc, err := codec.ReadFile[string](ctx, path)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return
	}
	v, err := doc.View()
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return
	}
	fmt.Fprintf(w, "%s (%s) diff %d/%d\n", doc.Name, path, v.CurrentDiffIndex()+1, v.Len())
	fmt.Fprintln(w, renderView(s, v))
}

// storeWatch reports a stored history each time the store file changes. The
// store file is shared by every history, so the cached record is only dropped
// when the history's own summary moved.
type storeWatch struct {
	s    *session
	ref  string
	seen store.Summary
	have bool
}

func (sw *storeWatch) report(ctx context.Context, w io.Writer) {
	sum, found, err := sw.summary(ctx)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", sw.ref, err)
		return
	}
	if sw.have && (!found || !sameSummary(sum, sw.seen)) {
		log.Debug(log.CatWatcher, "Stored history changed", "ref", sw.ref)
		sw.s.cache.Invalidate(&store.Record[string]{GUID: sw.seen.GUID, Name: sw.seen.Name})
	}
	sw.seen, sw.have = sum, found

	rec, v, err := sw.s.load(ctx, sw.ref)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", sw.ref, err)
		return
	}
	printState(w, sw.s, rec, v)
}

// summary finds the listing entry for the watched ref, matching a GUID before a name.
func (sw *storeWatch) summary(ctx context.Context) (store.Summary, bool, error) {
	sums, err := sw.s.repo.List(ctx)
	if err != nil {
		return store.Summary{}, false, err
	}
	for _, sum := range sums {
		if sum.GUID == sw.ref {
			return sum, true, nil
		}
	}
	for _, sum := range sums {
		if sum.Name == sw.ref {
			return sum, true, nil
		}
	}
	return store.Summary{}, false, nil
}

func sameSummary(a, b store.Summary) bool {
	return a.GUID == b.GUID && a.Name == b.Name &&
		a.Cursor == b.Cursor && a.DiffCount == b.DiffCount &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

var watchCmd = &cobra.Command{
	Use:   "watch FILE | watch --store REF",
	Short: "Re-print a history whenever it changes on disk",
	Long: `Watch a history document (as written by export) and print its grid every
time the file changes. Each reload re-validates the diff log, so edits that
break the history are reported as they happen.

With --store, watch a stored history instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		target := args[0]
		wcfg := watcher.ForDocument(target, s.cfg.Watch.Debounce)
		report := func(ctx context.Context, w io.Writer) { reportDocument(ctx, w, s, target) }
		if watchStore {
			wcfg = watcher.ForStore(s.db.Path(), s.cfg.Watch.Debounce)
			report = (&storeWatch{s: s, ref: target}).report
		}

		w, err := watcher.New(wcfg)
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		report(ctx, out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				log.Debug(log.CatWatcher, "Change detected", "target", target)
				fmt.Fprintln(out)
				report(ctx, out)
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchStore, "store", false, "watch a stored history instead of a document file")
	rootCmd.AddCommand(watchCmd)
}
