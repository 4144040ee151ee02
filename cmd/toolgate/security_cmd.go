package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarren/toolgate/internal/store"
)

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Inspect security screening activity",
}

var securityStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show screening policy and audit totals",
	RunE:  runSecurityStats,
}

var securityAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent screening events",
	RunE:  runSecurityAudit,
}

var (
	auditLimit   int
	auditFlagged bool
)

func init() {
	securityCmd.AddCommand(securityStatsCmd, securityAuditCmd)

	securityAuditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum events to show")
	securityAuditCmd.Flags().BoolVar(&auditFlagged, "flagged", false, "Only show flagged events")
}

// openAuditStore opens the configured audit database.
func openAuditStore() (*store.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.AuditDB == "" {
		return nil, fmt.Errorf("no audit_db configured; set audit_db in the config file")
	}
	return store.New(cfg.AuditDB)
}

func runSecurityStats(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	policy := cfg.SecurityPolicy()
	fmt.Printf("Mode:          %s\n", policy.Mode)
	if policy.InteractionMode != "" {
		fmt.Printf("Interactions:  %s\n", policy.InteractionMode)
	}
	fmt.Printf("On classifier error: ")
	if policy.FailOpen {
		fmt.Println("allow (fail-open)")
	} else {
		fmt.Println("deny (fail-closed)")
	}

	if cfg.AuditDB == "" {
		fmt.Println("Audit trail:   disabled")
		return nil
	}

	s, err := store.New(cfg.AuditDB)
	if err != nil {
		return err
	}
	defer s.Close()

	total, err := s.CountEvents()
	if err != nil {
		return err
	}
	flagged, err := s.FlaggedEvents(0)
	if err != nil {
		return err
	}
	fmt.Printf("Audit events:  %d total, %d flagged (recent window)\n", total, len(flagged))
	return nil
}

func runSecurityAudit(cmd *cobra.Command, args []string) error {
	s, err := openAuditStore()
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.RecentEvents(auditLimit)
	if auditFlagged {
		events, err = s.FlaggedEvents(auditLimit)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tDIRECTION\tSUBJECT\tFLAGGED\tOUTCOME\tCATEGORIES")
	for _, e := range events {
		flagged := ""
		if e.Flagged {
			flagged = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, e.Direction, e.Subject, flagged, e.Outcome, e.Categories)
	}
	return w.Flush()
}
