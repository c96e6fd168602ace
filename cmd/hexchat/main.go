package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hexchat",
		Short: "Manage chat conversation threads with a simulated assistant",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			return initLogging()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("backend", "file", "Archive backend (file, sqlite, memory)")
	flags.String("archive", "", "Archive path (defaults to ~/.hexchat/conversations.json or .db)")
	flags.Duration("reply-delay", 2*time.Second, "Artificial delay before simulated replies")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	for _, name := range []string{"backend", "archive", "reply-delay", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(
		newChatCommand(),
		newListCommand(),
		newShowCommand(),
		newDeleteCommand(),
		newClearCommand(),
		newExportCommand(),
	)

	cobra.CheckErr(rootCmd.Execute())
}

func initConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".hexchat"))
	}
	viper.SetEnvPrefix("HEXCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
	}
	return nil
}

func initLogging() error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	zerolog.SetGlobalLevel(level)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}
