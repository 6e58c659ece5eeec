package cli

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/saltmarshlabs/crossgate/internal/pkg/logger"
)

// Global logging flags
var (
	logLevel    string
	logFile     string
	logToStderr bool
	logFormat   string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "crossgatectl",
		Short:         "Operator tooling for the crossgate session bridge",
		Long:          `Mint, verify, and inspect bridge tokens, and manage the credentials the portal and board share.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(newTokenCommand())
	rootCmd.AddCommand(newLogoutKeyCommand())
	rootCmd.AddCommand(newHashPasswordCommand())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogFile:     logFile,
		LogToStderr: logToStderr,
		Format:      logFormat,
	})
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// resolveSecret returns the shared bridge secret from the --secret
// flag, the environment, or an interactive prompt, in that order.
func resolveSecret(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("EXTERNAL_AUTH_SECRET"); env != "" {
		return env, nil
	}

	fmt.Fprint(os.Stderr, "Shared secret: ")
	secretBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	if len(secretBytes) == 0 {
		return "", fmt.Errorf("secret must not be empty")
	}
	return string(secretBytes), nil
}
