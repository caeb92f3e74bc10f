package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/handlers/combat/v1alpha1"
)

var (
	moveStrategy string
	moveTarget   string
	moveAbility  string
	moveFeint    string
	moveItem     string
)

var submitMoveCmd = &cobra.Command{
	Use:   "submit-move [battle-id] [actor-id]",
	Short: "Submit an intent for an actor",
	Long: `Submit an exchange, item or instant intent. Examples:

  submit-move battle-1 1 --target 2
  submit-move battle-1 1 --target 2 --ability power_strike
  submit-move battle-1 1 --strategy item --item potion
  submit-move battle-1 1 --strategy instant --ability whirlwind --target all_enemies`,
	Args: cobra.ExactArgs(2),
	RunE: submitMove,
}

func init() {
	submitMoveCmd.Flags().StringVar(&moveStrategy, "strategy", string(combat.StrategyExchange), "exchange, item or instant")
	submitMoveCmd.Flags().StringVar(&moveTarget, "target", "", "target actor id or descriptor")
	submitMoveCmd.Flags().StringVar(&moveAbility, "ability", "", "ability id")
	submitMoveCmd.Flags().StringVar(&moveFeint, "feint", "", "feint id")
	submitMoveCmd.Flags().StringVar(&moveItem, "item", "", "item id")
}

func submitMove(cmd *cobra.Command, args []string) error {
	client, cleanup, err := createCombatClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := v1alpha1.Encode(&v1alpha1.SubmitMoveRequest{
		BattleID: args[0],
		ActorID:  v1alpha1.ActorID(args[1]),
		Strategy: moveStrategy,
		Payload: combat.PayloadInput{
			TargetID:  moveTarget,
			AbilityID: moveAbility,
			FeintID:   moveFeint,
			ItemID:    moveItem,
		},
	})
	if err != nil {
		return err
	}

	resp, err := client.SubmitMove(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to submit move: %w", err)
	}
	return printResponse(cmd, resp)
}
