package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-combat/internal/handlers/combat/v1alpha1"
)

var createBattleCmd = &cobra.Command{
	Use:   "create-battle [file]",
	Short: "Open a battle described by a YAML or JSON file",
	Long: `Open a battle. The file holds meta, actors and optional bot target queues:

  meta:
    battle_id: battle-1
    seed: 42
    teams: {blue: ["1"], red: ["2"]}
    actors_info: {"1": player, "2": ai}
  actors:
    - char_id: "1"
      ...
  targets:
    "2": ["1"]`,
	Args: cobra.ExactArgs(1),
	RunE: createBattle,
}

// loadBattleFile reads a battle file; JSON files parse as YAML too.
func loadBattleFile(path string) (*v1alpha1.CreateBattleRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	// the JSON shape of the domain types is the source of truth
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to reshape %s: %w", path, err)
	}

	var req v1alpha1.CreateBattleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid battle file %s: %w", path, err)
	}
	return &req, nil
}

func createBattle(cmd *cobra.Command, args []string) error {
	battleReq, err := loadBattleFile(args[0])
	if err != nil {
		return err
	}

	client, cleanup, err := createCombatClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := v1alpha1.Encode(battleReq)
	if err != nil {
		return err
	}
	resp, err := client.CreateBattle(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create battle: %w", err)
	}
	return printResponse(cmd, resp)
}
