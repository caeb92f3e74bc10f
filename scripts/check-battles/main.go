// Command check-battles scans every battle in the hot cache and reports
// records that break the state rules the engine relies on.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/redis"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
)

func main() {
	defaultURL := os.Getenv("RPG_COMBAT_REDIS_URL")
	if defaultURL == "" {
		defaultURL = "redis://localhost:6379/0"
	}
	redisURL := flag.String("redis-url", defaultURL, "redis connection url")
	flag.Parse()

	client, err := redis.NewClientFromURL(*redisURL, nil)
	if err != nil {
		log.Fatal("Failed to create Redis client:", err)
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", *redisURL)
	repo := battle.NewRedisRepository(client)

	ids, err := repo.ListBattleIDs(ctx, battle.ListBattleIDsInput{})
	if err != nil {
		log.Fatal("Failed to list battles:", err)
	}

	var broken int
	for _, id := range ids.BattleIDs {
		problems := checkBattle(ctx, repo, id)
		if len(problems) == 0 {
			continue
		}
		broken++
		fmt.Printf("battle %s:\n", id)
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
	}

	fmt.Printf("\nChecked %d battles, %d with problems\n", len(ids.BattleIDs), broken)
	if broken > 0 {
		os.Exit(1)
	}
}

func checkBattle(ctx context.Context, repo battle.Repository, battleID string) []string {
	loaded, err := repo.LoadContext(ctx, battle.LoadContextInput{BattleID: battleID})
	if err != nil {
		return []string{fmt.Sprintf("load failed: %v", err)}
	}

	var problems []string
	meta := loaded.Meta
	if err := meta.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("invalid control record: %v", err))
	}

	if !meta.Active {
		if _, ok := meta.Teams[meta.Winner]; !ok && meta.Winner != combat.WinnerDraw {
			problems = append(problems, fmt.Sprintf("finished with unknown winner %q", meta.Winner))
		}
		peek, err := repo.PeekActions(ctx, battle.PeekActionsInput{BattleID: battleID, Limit: 1})
		if err != nil {
			problems = append(problems, fmt.Sprintf("read action queue: %v", err))
		} else if peek.Pending > 0 {
			problems = append(problems, fmt.Sprintf("finished with %d queued actions", peek.Pending))
		}
		announced, err := repo.IsAnnounced(ctx, battle.IsAnnouncedInput{BattleID: battleID})
		if err != nil {
			problems = append(problems, fmt.Sprintf("read announcement marker: %v", err))
		} else if !announced.Announced {
			problems = append(problems, "finished but the result was never announced")
		}
	}

	ids := make([]string, 0, len(loaded.Actors))
	for id := range loaded.Actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	actors := make([]*combat.ActorSnapshot, 0, len(ids))
	for _, id := range ids {
		actors = append(actors, loaded.Actors[id])
	}
	if err := engine.CheckConsistency(meta, actors...); err != nil {
		problems = append(problems, err.Error())
	}
	return problems
}
