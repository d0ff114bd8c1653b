package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/lu-zhengda/appsweep/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath := configPath
		if cfgPath == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			cfgPath = p
		}

		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}

		cfg, warnings := config.LoadAndValidate(data)

		if len(warnings) == 0 {
			fmt.Printf("Config OK (%s)\n", cfgPath)
			fmt.Printf("  application dirs: %s\n", strings.Join(cfg.AppRoots(), ", "))
			fmt.Printf("  library:          %s\n", cfg.Library())
			return nil
		}

		fmt.Printf("Found %d warning(s) in %s:\n", len(warnings), cfgPath)
		printWarnings(warnings)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Println(configPath)
			return nil
		}
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

func printWarnings(warnings []config.Warning) {
	for _, w := range warnings {
		if w.Field != "" {
			fmt.Printf("  [%s] %s\n", w.Field, w.Message)
		} else {
			fmt.Printf("  %s\n", w.Message)
		}
		if w.Suggestion != "" {
			fmt.Printf("    suggestion: %s\n", w.Suggestion)
		}
	}
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
}
