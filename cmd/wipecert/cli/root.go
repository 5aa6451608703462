// Package cli implements the wipecert command-line interface using Cobra:
// key generation, certificate issuance, detached signing, verification and
// the registry/verification server.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxygenesis/wipecert/internal/config"
)

var (
	verbose  bool
	jsonOut  bool
	cfgPath  string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wipecert",
	Short: "Issue and verify signed data-sanitization certificates",
	Long: `wipecert attests that a storage device underwent a data-sanitization
procedure. It assembles a canonical certificate from device metadata, wipe
method and evidentiary hashes, signs it with an asymmetric key, and lets any
third party verify the result without trusting the generating machine.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		level := slog.LevelWarn
		if verbose || cfg.Log.Verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}
		var h slog.Handler
		if jsonOut || cfg.Log.JSON {
			h = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			h = slog.NewTextHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(h))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON log output")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "wipecert.yaml", "config file path")
}
