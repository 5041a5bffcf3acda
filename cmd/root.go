package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/internal/client"
	"github.com/axellelanca/shortlinkctl/internal/config"
	"github.com/axellelanca/shortlinkctl/internal/logger"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

var (
	// Cfg is the loaded configuration, available to every command once
	// PersistentPreRunE has run.
	Cfg *config.Config
	// Logger writes to stderr; stdout only carries rendered output.
	Logger *zap.Logger

	configFile string
	apiURL     string
	output     string
	logLevel   string
)

// RootCmd is the base command. Subcommands register themselves from their own
// init() functions (see cmd/cli and cmd/server).
var RootCmd = &cobra.Command{
	Use:   "shortlinkctl",
	Short: "Command line client for the URL shortener API",
	Long: `shortlinkctl creates, lists and deletes short links and shows their analytics
by talking to a URL shortener REST API. It can also run a local stub of that API.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the command tree. It is called from main.go. SIGINT and SIGTERM
// cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if Logger != nil {
			_ = Logger.Sync()
		}
		os.Exit(1)
	}
}

// reportedError is a failure the command already showed to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported marks err as already shown, so Execute only sets the exit code.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./configs/config.yaml)")
	flags.StringVar(&apiURL, "api-url", "", "API base URL, overrides api.base_url")
	flags.StringVarP(&output, "output", "o", OutputText, "output format: text or json")
	flags.StringVar(&logLevel, "log-level", "", "log level, overrides log.level")
}

// initConfig loads configuration and the logger before any command runs.
func initConfig(cmd *cobra.Command, _ []string) error {
	if output != OutputText && output != OutputJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", output, OutputText, OutputJSON)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return err
	}

	Cfg = cfg
	Logger = log.With(zap.String("command", cmd.Name()))
	return nil
}

// NewClient builds an API client from the loaded configuration.
func NewClient() (*client.Client, error) {
	return client.New(Cfg.API.BaseURL, client.WithLogger(Logger))
}

// JSONOutput reports whether --output json was requested.
func JSONOutput() bool {
	return output == OutputJSON
}
