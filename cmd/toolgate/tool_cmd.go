package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarren/toolgate/internal/client"
	"github.com/mkarren/toolgate/internal/models"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Discover tools across all enabled servers",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the aggregated tool catalog",
	RunE:  runToolsList,
}

var toolsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tools by name or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsSearch,
}

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call a tool, routed to its winning server",
	Args:  cobra.ExactArgs(1),
	RunE:  runCall,
}

var (
	callArgs     string
	toolsRefresh bool
)

func init() {
	toolsCmd.AddCommand(toolsListCmd, toolsSearchCmd)

	toolsCmd.PersistentFlags().BoolVar(&toolsRefresh, "refresh", false, "Force a catalog rebuild even when auto_discover is off")
	callCmd.Flags().StringVar(&callArgs, "args", "{}", "Tool arguments as a JSON object")
}

// refreshedClient builds a client and populates its catalog. The catalog is
// built when the config enables auto_discover or when force is set; a call
// always forces a build since routing needs a snapshot.
func refreshedClient(ctx context.Context, force bool) (*client.Client, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.AutoDiscover && !force {
		return c, nil
	}

	snap, err := c.Refresh(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	for _, name := range snap.Unreachable() {
		fmt.Fprintf(os.Stderr, "warning: server %q unreachable\n", name)
	}
	return c, nil
}

func printTools(tools []models.ToolDescriptor) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tSERVER\tPRIORITY\tDESCRIPTION")
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Name, t.ServerName, t.Priority, t.Description)
	}
	return w.Flush()
}

func runToolsList(cmd *cobra.Command, args []string) error {
	c, err := refreshedClient(cmd.Context(), toolsRefresh)
	if err != nil {
		return err
	}
	defer c.Close()

	return printTools(c.Tools())
}

func runToolsSearch(cmd *cobra.Command, args []string) error {
	c, err := refreshedClient(cmd.Context(), toolsRefresh)
	if err != nil {
		return err
	}
	defer c.Close()

	matches := c.Search(args[0])
	if len(matches) == 0 {
		fmt.Println("No matching tools.")
		return nil
	}
	return printTools(matches)
}

func runCall(cmd *cobra.Command, args []string) error {
	var arguments map[string]any
	if err := json.Unmarshal([]byte(callArgs), &arguments); err != nil {
		return fmt.Errorf("parsing --args: %w", err)
	}

	c, err := refreshedClient(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.CallTool(cmd.Context(), args[0], arguments)
	if err != nil {
		return err
	}

	if result.IsError {
		fmt.Fprintln(os.Stderr, "tool reported an error:")
	}
	fmt.Println(result.Content)
	return nil
}
