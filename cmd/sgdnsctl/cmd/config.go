package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nprokhorov/sgdns-discovery/internal/config"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the desired-state configuration document",
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration document without touching the KV store",
	Long: `validate decodes the same document shape stored at db_config_item_key_id
({"config": "<base64 JSON array of scaling group entries>"}) and runs
every entry through the struct validation the resolver applies on
load. With no file argument it reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

// document mirrors internal/config's unexported document shape; kept
// as a separate local type since the CLI operates on raw bytes, never
// a live Resolver.
type document struct {
	Config string `json:"config"`
}

func init() {
	configCmd.AddCommand(validateCmd)
}

func runConfigValidate(c *cobra.Command, args []string) error {
	raw, err := readInput(args)
	if err != nil {
		return err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("malformed configuration document: %w", err)
	}
	if doc.Config == "" {
		return fmt.Errorf("configuration document missing 'config' field")
	}

	decoded, err := base64.StdEncoding.DecodeString(doc.Config)
	if err != nil {
		return fmt.Errorf("config field is not valid base64: %w", err)
	}

	var configs []domain.ScalingGroupConfig
	if err := json.Unmarshal(decoded, &configs); err != nil {
		return fmt.Errorf("config field is not a valid JSON array: %w", err)
	}

	var failed int
	for i, cfg := range configs {
		if err := config.Validate(cfg); err != nil {
			failed++
			fmt.Printf("entry %d (%s): INVALID: %v\n", i, cfg.SgName, err)
			continue
		}
		fmt.Printf("entry %d (%s): ok\n", i, cfg.SgName)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed validation", failed, len(configs))
	}
	fmt.Printf("%d entries valid\n", len(configs))
	return nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}
