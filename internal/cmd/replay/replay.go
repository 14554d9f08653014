// Package replay parses replay command flags and plays a recorded
// game back over the spectator stream.
package replay

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/luarena/luarena/internal/arena/event"
	replaystore "github.com/luarena/luarena/internal/arena/replay"
	entrypoint "github.com/luarena/luarena/internal/platform/cmd"
	"github.com/luarena/luarena/internal/stream"
)

// Config holds replay command configuration.
type Config struct {
	DB    string        `env:"LUARENA_REPLAY_DB" envDefault:"replays.db"`
	ID    string        `env:"LUARENA_REPLAY_ID"`
	Delay time.Duration `env:"LUARENA_REPLAY_DELAY" envDefault:"10ms"`
	Addr  string        `env:"LUARENA_REPLAY_ADDR" envDefault:":8080"`
	List  bool          `env:"-"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DB, "db", cfg.DB, "Replay database path")
	fs.StringVar(&cfg.ID, "id", cfg.ID, "Replay id (empty plays the latest)")
	fs.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Pause between ticks")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Spectator stream listen address")
	fs.BoolVar(&cfg.List, "list", false, "List stored replays and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run lists or plays back replays according to cfg.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReplay, func(ctx context.Context) error {
		store, err := replaystore.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		if cfg.List {
			return list(ctx, store)
		}
		return play(ctx, store, cfg)
	})
}

func list(ctx context.Context, store *replaystore.Store) error {
	summaries, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		log.Print("no replays stored")
		return nil
	}
	for _, summary := range summaries {
		log.Printf("%s  %s  %d ticks", summary.ID, summary.CreatedAt.Format(time.RFC3339), summary.StepCount)
	}
	return nil
}

func play(ctx context.Context, store *replaystore.Store, cfg Config) error {
	id, err := resolveID(ctx, store, cfg.ID)
	if err != nil {
		return err
	}
	history, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	log.Printf("playing replay %s, %d ticks", id, len(history))

	hub := stream.NewHub()
	mux := http.NewServeMux()
	mux.Handle("/stream", hub)
	server := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("stream server: %v", err)
		}
	}()
	log.Printf("streaming on %s/stream", cfg.Addr)

	out := make(chan event.StepEvents, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(out)
	}()

	playErr := replaystore.NewPlayer(history).Play(ctx, cfg.Delay, out)
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("stream server shutdown: %v", err)
	}
	return playErr
}

func resolveID(ctx context.Context, store *replaystore.Store, raw string) (uuid.UUID, error) {
	if raw == "" {
		return store.Latest(ctx)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse replay id %q: %w", raw, err)
	}
	return id, nil
}
