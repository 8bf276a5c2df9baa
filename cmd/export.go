package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/gridhist/internal/codec"
	"github.com/zjrosen/gridhist/internal/store"
)

var importName string

var exportCmd = &cobra.Command{
	Use:   "export REF FILE",
	Short: "Write a history to a YAML document",
	Args:  cobra.ExactArgs(2),
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
		if err := codec.WriteFile(cmd.Context(), args[1], codec.FromRecord(rec)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%d diffs) to %s\n", rec.Name, len(rec.Diffs), args[1])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create a history from a YAML document",
	Long: `Create a history from a document written by export. The diff log is
validated before anything is stored; a document whose diffs do not chain
(each change's old value matching the previous new value at that cell) is
rejected.

The document's GUID is kept unless a history with that GUID already exists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		doc, err := codec.ReadFile[string](ctx, args[0])
		if err != nil {
			return err
		}
		rec, err := doc.Record()
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if importName != "" {
			rec.Name = importName
		}
		if rec.Name == "" {
			return fmt.Errorf("%s has no name; pass --name", args[0])
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if rec.GUID == "" {
			rec.GUID = uuid.New().String()
		} else if _, err := s.repo.FindByGUID(ctx, rec.GUID); err == nil {
			rec.GUID = uuid.New().String()
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := s.repo.Save(ctx, rec); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rec.GUID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "name for the imported history (default: the document's)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
