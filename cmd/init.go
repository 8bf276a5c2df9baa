package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	initWidth      int
	initHeight     int
	initFill       string
	initNoCompress bool
)

var initCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Create a new empty history",
	Long: `Create a new history with a grid of the given size.

Examples:
  gridhist init level1 --width 20 --height 8
  gridhist init board -W 3 -H 3 --fill .`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		width, height := initWidth, initHeight
		if !cmd.Flags().Changed("width") {
			width = s.cfg.History.DefaultWidth
		}
		if !cmd.Flags().Changed("height") {
			height = s.cfg.History.DefaultHeight
		}
		if width <= 0 || height <= 0 {
			return fmt.Errorf("grid size must be positive, got %dx%d", width, height)
		}

		cells := make([]string, width*height)
		for i := range cells {
			cells[i] = initFill
		}

		ctx := cmd.Context()
		rec, err := s.repo.Create(ctx, args[0], width, height, cells)
		if err != nil {
			return err
		}
		autoCompress := s.cfg.History.AutoCompress && !initNoCompress
		if rec.AutoCompress != autoCompress {
			rec.AutoCompress = autoCompress
			if err := s.repo.Save(ctx, rec); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), rec.GUID)
		return nil
	},
}

func init() {
	initCmd.Flags().IntVarP(&initWidth, "width", "W", 0, "grid width (default from history.default_width)")
	initCmd.Flags().IntVarP(&initHeight, "height", "H", 0, "grid height (default from history.default_height)")
	initCmd.Flags().StringVar(&initFill, "fill", "", "initial value of every cell")
	initCmd.Flags().BoolVar(&initNoCompress, "no-compress", false, "keep every individual write in each diff")
	rootCmd.AddCommand(initCmd)
}
