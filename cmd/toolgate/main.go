package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarren/toolgate/internal/client"
	"github.com/mkarren/toolgate/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "toolgate",
	Short: "toolgate - security-screened multi-server MCP client",
	Long: `toolgate aggregates tools from multiple MCP servers into one catalog and
routes tool calls to the preferred server, screening every tool registration
and call payload through a content classifier.`,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.toolgate/config.yaml)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(securityCmd)
}

// resolveConfigPath returns the --config flag value or the home default.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the active configuration file.
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newClient builds a client with the real transport and classifier.
func newClient(cfg *config.Config) (*client.Client, error) {
	return client.New(cfg, client.Options{})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
