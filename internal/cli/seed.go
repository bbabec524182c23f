package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"live-quiz-service/internal/config"
)

// NewSeedCmd inserts demo users and an active quiz, handy for trying the
// websocket flow against a fresh database.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and a demo quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for _, username := range []string{"alice", "bob"} {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO users (username) VALUES (?) ON CONFLICT (username) DO NOTHING`, username); err != nil {
			return fmt.Errorf("seed user %s: %w", username, err)
		}
	}

	questions, err := json.Marshal(demoQuizzes()[0].Questions)
	if err != nil {
		return err
	}
	code := newJoinCode()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO quizzes (title, description, code, is_active, questions)
		 VALUES (?, ?, ?, TRUE, ?::jsonb)`,
		"General knowledge", "A short warm-up quiz", code, string(questions)); err != nil {
		return fmt.Errorf("seed quiz: %w", err)
	}

	log.Printf("seeded demo quiz, join code %s", code)
	return nil
}

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newJoinCode generates a 6-character uppercase code, the same shape the
// quiz authoring service hands out.
func newJoinCode() string {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	code := make([]byte, 6)
	for i := range code {
		code[i] = joinCodeAlphabet[rnd.Intn(len(joinCodeAlphabet))]
	}
	return string(code)
}
