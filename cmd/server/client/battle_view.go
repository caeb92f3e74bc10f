package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-combat/internal/handlers/combat/v1alpha1"
)

var (
	viewKind string
	viewPage int
)

var battleViewCmd = &cobra.Command{
	Use:   "battle-view [battle-id]",
	Short: "Show a battle snapshot, log page or history page",
	Args:  cobra.ExactArgs(1),
	RunE:  battleView,
}

func init() {
	battleViewCmd.Flags().StringVar(&viewKind, "view", "snapshot", "snapshot, log or history")
	battleViewCmd.Flags().IntVar(&viewPage, "page", 1, "page of the log or history view")
}

func battleView(cmd *cobra.Command, args []string) error {
	client, cleanup, err := createCombatClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := v1alpha1.Encode(&v1alpha1.BattleViewRequest{BattleID: args[0], View: viewKind, Page: viewPage})
	if err != nil {
		return err
	}

	resp, err := client.BattleView(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to read battle: %w", err)
	}
	return printResponse(cmd, resp)
}
