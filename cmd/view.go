package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/ui/viewer"
)

var viewCmd = &cobra.Command{
	Use:   "view REF",
	Short: "Step through a history interactively",
	Long: `Open an interactive viewer. Use h/← and l/→ to revert and re-apply diffs,
g/G to jump to either end, d to show a line diff and ? for help.

The cursor position is saved on exit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if s.cfg.Log.Enabled {
			// Route bubbletea's own logging into the same file.
			done, err := log.InitWithTeaLog(s.cfg.Log.Path, "gridhist")
			if err == nil {
				defer done()
				level, _ := log.ParseLevel(s.cfg.Log.Level)
				log.SetMinLevel(level)
			}
		}

		rec, v, err := s.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		title := fmt.Sprintf("%s (%dx%d)", rec.Name, rec.Width, rec.Height)
		zone.NewGlobal()
		p := tea.NewProgram(viewer.New(title, v, s.renderOptions()),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("running viewer: %w", err)
		}

		m, ok := final.(viewer.Model)
		if !ok || !m.Moved() {
			return nil
		}
		if err := s.save(cmd.Context(), rec, m.History()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s saved at diff %d/%d\n",
			rec.Name, m.History().CurrentDiffIndex()+1, m.History().Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
