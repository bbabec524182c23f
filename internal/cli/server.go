package cli

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
	pgstore "live-quiz-service/internal/infra/postgres"
	rediscache "live-quiz-service/internal/infra/redis"
	"live-quiz-service/internal/registry"
	transport "live-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)

	var catalog app.QuizCatalog
	var participations app.ParticipationStore
	var users app.UserDirectory

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		catalog = pgstore.NewCatalog(pool)
		participations = pgstore.NewParticipationStore(pool)
		users = pgstore.NewUserDirectory(pool)
	} else {
		// Demo mode: everything in memory, seeded with sample data.
		directory := memory.NewUserDirectory(demoUsers())
		catalog = memory.NewCatalog(demoQuizzes())
		participations = memory.NewParticipationStore(directory)
		users = directory
	}

	if redisClient != nil {
		catalog = rediscache.NewCatalogCache(redisClient, catalog, cacheTTL)
	} else {
		catalog = memory.NewCatalogCache(catalog, cacheTTL)
	}

	rooms := registry.New()
	coordinator := app.NewCoordinator(rooms, catalog, participations, users)
	wsHandler := transport.NewWSHandler(coordinator)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		roomCount, connCount := rooms.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"rooms": roomCount, "connections": connCount})
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz room service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoQuizzes provides sample content for running without a database.
func demoQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:          1,
			Title:       "General knowledge",
			Description: "A short warm-up quiz",
			Code:        "ABC123",
			IsActive:    true,
			Questions: []domain.Question{
				{
					Text:          "What is 2 + 2?",
					Options:       []string{"3", "4", "5"},
					CorrectAnswer: 1,
				},
				{
					Text:          "Which planet is closest to the sun?",
					Options:       []string{"Mercury", "Venus", "Mars"},
					CorrectAnswer: 0,
				},
			},
			CreatedAt: time.Now(),
		},
	}
}

func demoUsers() []domain.User {
	return []domain.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
	}
}
