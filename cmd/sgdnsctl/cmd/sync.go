package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nprokhorov/sgdns-discovery/internal/bootstrap"
	"github.com/nprokhorov/sgdns-discovery/internal/config"
	"github.com/nprokhorov/sgdns-discovery/internal/reconcile"
)

var (
	syncAsg    string
	syncZone   string
	syncRecord string
	syncType   string
	syncAll    bool
	syncWhatIf bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile one record or every configured scaling group",
	Long: `sync drives the same reconciliation coordinator Trigger 2 uses.

Manual mode targets one record:
  sgdnsctl sync --asg=web-asg --zone=Z123 --record=api.example.com --type=A

Bulk mode sweeps every scaling group in the configuration document:
  sgdnsctl sync --all`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncAsg, "asg", "", "scaling group name (manual mode)")
	syncCmd.Flags().StringVar(&syncZone, "zone", "", "DNS hosted zone ID (manual mode)")
	syncCmd.Flags().StringVar(&syncRecord, "record", "", "DNS record name (manual mode)")
	syncCmd.Flags().StringVar(&syncType, "type", "", "DNS record type (manual mode)")
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "bulk mode: sweep every configured scaling group")
	syncCmd.Flags().BoolVar(&syncWhatIf, "what-if", false, "plan changes without applying them")
}

func runSync(c *cobra.Command, args []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !syncAll && (syncAsg == "" || syncZone == "" || syncRecord == "" || syncType == "") {
		return fmt.Errorf("sync requires --all, or --asg, --zone, --record and --type together")
	}

	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	logger := slog.Default()

	graph, err := bootstrap.Build(env, logger)
	if err != nil {
		return fmt.Errorf("build component graph: %w", err)
	}

	newWorker := func() *reconcile.Worker {
		return reconcile.NewWorker(graph.Membership, graph.Resolver, graph.DNSRegistry, graph.Prober, graph.Checker, graph.Applier, graph.Locker, logger, graph.Metrics)
	}
	coordinator := reconcile.New(graph.ConfigStore, newWorker, env.ReconciliationMaxConcurrency, logger, graph.Metrics)

	whatIf := syncWhatIf || env.ReconciliationWhatIf

	if syncAll {
		result, err := coordinator.Bulk(ctx, whatIf)
		if err != nil {
			return err
		}
		for _, outcome := range result.Outcomes {
			printOutcome(outcome)
		}
		if result.OverConservative {
			fmt.Println("note: more scaling groups than max_concurrency, chunks ran one after another")
		}
		return nil
	}

	sel := reconcile.ManualSelector{SgName: syncAsg, ZoneID: syncZone, RecordName: syncRecord, RecordType: syncType}
	outcome, err := coordinator.Manual(ctx, sel, whatIf)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func printOutcome(outcome reconcile.Outcome) {
	if outcome.Err != nil {
		fmt.Printf("%s: FAILED: %v\n", outcome.SgName, outcome.Err)
		return
	}
	if len(outcome.Planned) == 0 {
		fmt.Printf("%s: no changes\n", outcome.SgName)
		return
	}
	fmt.Printf("%s: %d change(s)\n", outcome.SgName, len(outcome.Planned))
	for _, change := range outcome.Planned {
		fmt.Printf("  %s %s %s\n", change.Action, change.RecordName, change.RecordType)
	}
}
