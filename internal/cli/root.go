package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "iexc",
	Short: "Minimal HTTP/1.1 client and IEX Cloud stock quote tool",
	Long: `iexc - minimal HTTP/1.1 client and IEX Cloud stock quote tool

Every request opens its own TCP connection (TLS by default), sends a single
GET request, reads the response bounded by Content-Length and closes the
connection. No keep-alive, redirects, cookies or retries.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Connection flags
	rootCmd.PersistentFlags().Bool("insecure", false, "Use plaintext HTTP (port 80) instead of TLS (port 443)")
	rootCmd.PersistentFlags().Int("port", 0, "Override the target port (0 = 443 for TLS, 80 for plaintext)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Read timeout per request (0 = wait indefinitely)")
	rootCmd.PersistentFlags().Duration("dial-timeout", 10*time.Second, "TCP connect timeout")
	rootCmd.PersistentFlags().String("ca-file", "", "PEM bundle of trusted root certificates (default: bundled Mozilla roots)")

	// Parser flags
	rootCmd.PersistentFlags().Bool("allow-bare-lf", false, "Accept bare LF line endings in the response head")
	rootCmd.PersistentFlags().Bool("lenient-content-length", false, "Treat a non-numeric Content-Length as 0")

	// Output flags
	rootCmd.PersistentFlags().IntP("verbose", "v", 0, "Verbosity level (0-2)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text, json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "iexc %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// setupLogging installs the default slog logger on stderr. Verbosity 0 shows
// warnings, 1 info and 2 or more debug output.
func setupLogging(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetInt("verbose")

	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}
