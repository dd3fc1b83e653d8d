package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crewdeck/crewctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect crewctl configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configShowCmd prints the effective configuration after defaults and
// environment overrides. The sealed-session passphrase is never printed.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		if cfgPath == "" {
			cfgPath = config.Path()
		}

		cfg, err := config.LoadFrom(cfgPath)
		if err != nil {
			return err
		}

		if cfg.TokenPassphrase != "" {
			cfg.TokenPassphrase = "(set)"
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("# %s\n", cfgPath)
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
