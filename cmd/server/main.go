// Package main is the entry point for the combat gRPC server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-combat/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "rpg-combat",
	Short: "RPG combat engine gRPC server",
	Long:  `rpg-combat resolves turn-based battles: it collects intents, pairs exchanges and executes actions for many battles at once.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
