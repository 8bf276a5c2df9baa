package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/gridhist/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configFileUsed())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the effective value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.IsSet(args[0]) {
			return fmt.Errorf("unknown config key %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), viper.Get(args[0]))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a key in the config file, keeping its comments",
	Long: `Set a dotted key (e.g. render.empty_glyph) in the config file in use.
If the resulting configuration does not validate, the previous file is restored.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !viper.IsSet(key) {
			return fmt.Errorf("unknown config key %q", key)
		}

		path := configFileUsed()
		original, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading config: %w", err)
		}
		if err := config.SetValue(path, key, value); err != nil {
			return err
		}

		// Reload and validate; restore the old file on failure.
		check := viper.New()
		setDefaults(check)
		check.SetConfigFile(path)
		var next config.Config
		err = check.ReadInConfig()
		if err == nil {
			err = check.Unmarshal(&next)
		}
		if err == nil {
			err = config.Validate(next)
		}
		if err != nil {
			if original != nil {
				_ = os.WriteFile(path, original, 0o600)
			} else {
				_ = os.Remove(path)
			}
			return fmt.Errorf("rejected %s=%s: %w", key, value, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", key, value, path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
