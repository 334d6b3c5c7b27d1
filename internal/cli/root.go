// Package cli implements the pdfchat command line client.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pdfchat/internal/client"
)

const defaultServerURL = "http://localhost:8080"

// NewRootCommand builds the command tree. Settings resolve from flags, then
// PDFCHAT_* environment variables, then ~/.pdfchat/config.yaml.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "pdfchat",
		Short:         "Chat with PDF documents through a pdfchat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
	}

	root.PersistentFlags().StringP("server", "s", defaultServerURL, "server address")
	root.PersistentFlags().String("api-key", "", "shared API key (env PDFCHAT_API_KEY)")
	root.PersistentFlags().String("config", "", "config file (default ~/.pdfchat/config.yaml)")
	_ = v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = v.BindPFlag("api_key", root.PersistentFlags().Lookup("api-key"))
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	newClient := func() *client.Client {
		return client.NewClient(v.GetString("server"), v.GetString("api_key"))
	}

	root.AddCommand(
		newUploadCommand(newClient),
		newChatCommand(newClient),
		newSessionsCommand(newClient),
		newHistoryCommand(newClient),
		newReloadCommand(newClient),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix("pdfchat")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("server", defaultServerURL)

	path := v.GetString("config")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".pdfchat", "config.yaml")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config %s failed: %w", path, err)
	}
	return nil
}
