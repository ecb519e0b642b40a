package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nprokhorov/sgdns-discovery/internal/bootstrap"
	"github.com/nprokhorov/sgdns-discovery/internal/config"
	"github.com/nprokhorov/sgdns-discovery/internal/lock"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Inspect record locks",
}

var lockStatusCmd = &cobra.Command{
	Use:   "status <lock_key>",
	Short: "Report whether a record lock is currently held",
	Args:  cobra.ExactArgs(1),
	RunE:  runLockStatus,
}

func init() {
	lockCmd.AddCommand(lockStatusCmd)
}

func runLockStatus(c *cobra.Command, args []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	graph, err := bootstrap.Build(env, slog.Default())
	if err != nil {
		return fmt.Errorf("build component graph: %w", err)
	}

	held, err := lock.New(graph.Repo).Check(ctx, args[0])
	if err != nil {
		return err
	}
	if held {
		fmt.Printf("%s: held\n", args[0])
	} else {
		fmt.Printf("%s: free\n", args[0])
	}
	return nil
}
