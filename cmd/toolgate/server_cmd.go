package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarren/toolgate/internal/config"
	"github.com/mkarren/toolgate/internal/models"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage configured MCP servers",
}

var serverAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a server to the configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runServerAdd,
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a server from the configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runServerRemove,
}

var serverEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServerSetEnabled(true),
}

var serverDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServerSetEnabled(false),
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured servers",
	RunE:  runServerList,
}

var (
	serverAddress  string
	serverTimeout  int
	serverPriority int
	serverTags     string
	serverDisabled bool
	serverListTag  string
)

func init() {
	serverCmd.AddCommand(serverAddCmd, serverRemoveCmd, serverEnableCmd, serverDisableCmd, serverListCmd)

	serverAddCmd.Flags().StringVar(&serverAddress, "address", "", "Server address (required)")
	serverAddCmd.Flags().IntVar(&serverTimeout, "timeout", 0, "Request timeout in seconds (default: config default_timeout)")
	serverAddCmd.Flags().IntVar(&serverPriority, "priority", 0, "Collision priority, lower wins")
	serverAddCmd.Flags().StringVar(&serverTags, "tags", "", "Comma-separated tags")
	serverAddCmd.Flags().BoolVar(&serverDisabled, "disabled", false, "Add the server in disabled state")
	serverAddCmd.MarkFlagRequired("address")

	serverListCmd.Flags().StringVar(&serverListTag, "tag", "", "Only show servers carrying this tag")
}

func runServerAdd(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	name := args[0]
	if cfg.FindServer(name) >= 0 {
		return fmt.Errorf("server %q already configured", name)
	}

	var tags []string
	if serverTags != "" {
		tags = strings.Split(serverTags, ",")
	}

	cfg.Servers = append(cfg.Servers, models.ServerConfig{
		Name:           name,
		Address:        serverAddress,
		Enabled:        !serverDisabled,
		TimeoutSeconds: serverTimeout,
		Priority:       serverPriority,
		Tags:           tags,
	})

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Added server %q (%s)\n", name, serverAddress)
	return nil
}

func runServerRemove(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	name := args[0]
	i := cfg.FindServer(name)
	if i < 0 {
		return fmt.Errorf("server %q not configured", name)
	}
	cfg.Servers = append(cfg.Servers[:i], cfg.Servers[i+1:]...)

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Removed server %q\n", name)
	return nil
}

func runServerSetEnabled(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		name := args[0]
		i := cfg.FindServer(name)
		if i < 0 {
			return fmt.Errorf("server %q not configured", name)
		}
		cfg.Servers[i].Enabled = enabled

		if err := config.Save(path, cfg); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("Server %q %s\n", name, state)
		return nil
	}
}

func runServerList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tPRIORITY\tTIMEOUT\tENABLED\tTAGS")
	for _, s := range c.Servers(serverListTag) {
		enabled := "✓"
		if !s.Enabled {
			enabled = "✗"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%ds\t%s\t%s\n",
			s.Name, s.Address, s.Priority, s.TimeoutSeconds, enabled, strings.Join(s.Tags, ", "))
	}
	return w.Flush()
}
