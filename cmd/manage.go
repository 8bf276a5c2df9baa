package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear REF",
	Short: "Forget every diff, keeping the current grid",
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
		dropped := v.Len()
		v.ClearHistory()
		if err := s.save(cmd.Context(), rec, v); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d diff(s) from %s\n", dropped, rec.Name)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete REF",
	Short: "Delete a history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		rec, err := s.cache.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := s.repo.Delete(cmd.Context(), rec.GUID); err != nil {
			return err
		}
		s.cache.Invalidate(rec)
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", rec.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored histories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		summaries, err := s.repo.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tGUID\tSIZE\tDIFF\tUPDATED")
		for _, sum := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d/%d\t%s\n",
				sum.Name, sum.GUID, sum.Width, sum.Height,
				sum.Cursor+1, sum.DiffCount, sum.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(clearCmd, deleteCmd, listCmd)
}
