// Package cli defines the command-line surface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/session"
	"github.com/ikchen/macropulse/pkg/logging"
)

const version = "0.3.0"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "macropulse",
		Short: "MacroPulse - multi-analyst macro market report",
		Long: `MacroPulse runs a team of LLM analysts (Fed policy, economic data,
prediction markets, cross-asset correlation) over fresh market data and
synthesizes their findings into one macro report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cfg)
		},
	}

	rootCmd.AddCommand(newReportCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newReportCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run one analysis cycle and write the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cfg)
		},
	}
}

// runReport executes one full cycle. Ctrl-C cancels the context; in-flight
// analysts stop at their next blocking call.
func runReport(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return sess.RunAndPersist(ctx)
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Run: func(cmd *cobra.Command, args []string) {
			shown := *cfg
			shown.OpenAIAPIKey = mask(shown.OpenAIAPIKey)
			shown.DeepSeekAPIKey = mask(shown.DeepSeekAPIKey)
			shown.FREDAPIKey = mask(shown.FREDAPIKey)
			data, _ := json.MarshalIndent(shown, "", "  ")
			fmt.Println(string(data))
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("configuration OK")
			return nil
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("macropulse v%s\n", version)
		},
	}
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
