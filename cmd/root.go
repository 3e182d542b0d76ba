package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lupinelegend/f1-radio-archive/cmd/factory"
)

var (
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "f1radio",
	Short: "F1 team radio archive pipeline",
	Long: `f1radio mirrors F1 team radio from OpenF1 into PostgreSQL, transcribes the
recordings with Whisper and tags them with a fixed category taxonomy.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format override: text or json")
}

// loadServices applies the global log flags on top of the command's options
func loadServices(ctx context.Context, opts factory.Options) (*factory.Services, func(), error) {
	opts.LogLevel = logLevel
	opts.LogFormat = logFormat
	return factory.NewServiceFactory().CreateServices(ctx, opts)
}
