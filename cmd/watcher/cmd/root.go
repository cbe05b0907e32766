package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/onflow/icq-watcher/config"
)

var (
	conf *config.WatcherConfig
	log  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "watcher",
	Short:         "Watch remote account balances through an interchain query subsystem",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loader, err := config.NewLoader()
		if err != nil {
			return err
		}
		conf, err = loader.Load(cmd.Flags())
		if err != nil {
			return err
		}
		log = log.Level(conf.ZerologLevel())
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults, err := config.DefaultConfig()
	if err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	config.InitializePFlagSet(rootCmd.PersistentFlags(), defaults)

	log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(readCmd)
}
