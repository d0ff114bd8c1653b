package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lu-zhengda/appsweep/internal/config"
	"github.com/lu-zhengda/appsweep/internal/engine"
	"github.com/lu-zhengda/appsweep/internal/tui"
	"github.com/spf13/cobra"
)

var (
	jsonFlag    bool
	verboseFlag bool
	configPath  string
	appConfig   *config.Config
	logger      = slog.New(slog.DiscardHandler)

	// Set via ldflags at build time.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "appsweep",
	Short:         "Remove macOS applications together with their leftovers",
	Long:          "appsweep removes an application bundle and the caches, preferences, logs and containers it left under ~/Library.\nLaunch without subcommands for interactive TUI mode.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verboseFlag)

		// config subcommands read the file themselves so a broken file can
		// still be validated.
		if cmd.Name() == "help" || cmd.Flags().Changed("version") || cmd.Parent() == configCmd {
			appConfig = config.Default()
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = cfg

		for _, w := range appConfig.Validate() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
			}
		}
		e := buildEngine(false)
		p := tea.NewProgram(tui.New(cmd.Context(), e), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so an in-flight removal stops between entries.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("appsweep %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log skipped paths and process handling to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/appsweep/config.yaml)")
	rootCmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	rootCmd.Flags().MarkHidden("generate-completion")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(orphansCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildEngine wires the engine from the loaded config. noQuit disables
// process control regardless of remove.quit_running.
func buildEngine(noQuit bool) *engine.Engine {
	if appConfig == nil {
		appConfig = config.Default()
	}
	cfg := *appConfig
	if noQuit {
		cfg.Remove.QuitRunning = false
	}
	return engine.FromConfig(&cfg, logger)
}

// RootCmd returns the root cobra command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}
