// Package battle parses battle command flags and drives a full game:
// load characters, run the configured rounds, stream ticks to
// spectators, and optionally record a replay.
package battle

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/luarena/luarena/internal/arena"
	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/arena/replay"
	"github.com/luarena/luarena/internal/character/loader"
	entrypoint "github.com/luarena/luarena/internal/platform/cmd"
	"github.com/luarena/luarena/internal/random"
	"github.com/luarena/luarena/internal/stream"
)

// Config holds battle command configuration.
type Config struct {
	Characters []string      `env:"LUARENA_BATTLE_CHARACTERS"`
	Rounds     uint          `env:"LUARENA_BATTLE_ROUNDS" envDefault:"10"`
	Delay      time.Duration `env:"LUARENA_BATTLE_DELAY" envDefault:"10ms"`
	Record     string        `env:"LUARENA_BATTLE_RECORD"`
	Addr       string        `env:"LUARENA_BATTLE_ADDR" envDefault:":8080"`
	Headless   bool          `env:"LUARENA_BATTLE_HEADLESS"`
	Seed       int64         `env:"LUARENA_BATTLE_SEED"`
}

// stringList lets a flag be passed once per value.
type stringList struct {
	values *[]string
	set    bool
}

func (l *stringList) String() string {
	if l.values == nil {
		return ""
	}
	return strings.Join(*l.values, ",")
}

func (l *stringList) Set(value string) error {
	// The first flag occurrence replaces any environment default.
	if !l.set {
		*l.values = nil
		l.set = true
	}
	*l.values = append(*l.values, value)
	return nil
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.Var(&stringList{values: &cfg.Characters}, "character", "Character directory (repeat for each combatant)")
	fs.UintVar(&cfg.Rounds, "rounds", cfg.Rounds, "Number of rounds to play")
	fs.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Pause between ticks")
	fs.StringVar(&cfg.Record, "record", cfg.Record, "Replay database path (empty disables recording)")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Spectator stream listen address")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run without the spectator stream server")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Spawn placement seed (0 draws a random one)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run plays one full game according to cfg.
func Run(ctx context.Context, cfg Config) error {
	if len(cfg.Characters) < 2 {
		return fmt.Errorf("at least two characters are required, got %d", len(cfg.Characters))
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBattle, func(ctx context.Context) error {
		seed := cfg.Seed
		if seed == 0 {
			var err error
			if seed, err = random.NewSeed(); err != nil {
				return err
			}
		}

		mode := event.Forget
		if cfg.Record != "" {
			mode = event.Remember
		}

		game := arena.NewGame(mode, seed)
		defer func() {
			if err := game.Close(); err != nil {
				log.Printf("close runtimes: %v", err)
			}
		}()

		for _, dir := range cfg.Characters {
			meta, runtime, err := loader.Load(ctx, dir)
			if err != nil {
				return err
			}
			id, err := game.AddCharacter(meta, runtime)
			if err != nil {
				return err
			}
			registered, _ := game.Meta(id)
			log.Printf("loaded %s from %s", registered.DisplayName(), dir)
		}

		out := make(chan event.StepEvents, 64)
		done := make(chan struct{})
		var server *http.Server
		if cfg.Headless {
			go func() {
				defer close(done)
				for range out {
				}
			}()
		} else {
			hub := stream.NewHub()
			mux := http.NewServeMux()
			mux.Handle("/stream", hub)
			server = &http.Server{Addr: cfg.Addr, Handler: mux}
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("stream server: %v", err)
				}
			}()
			log.Printf("streaming on %s/stream", cfg.Addr)
			go func() {
				defer close(done)
				hub.Run(out)
			}()
		}

		runErr := game.Run(ctx, uint32(cfg.Rounds), cfg.Delay, out)
		<-done
		if server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("stream server shutdown: %v", err)
			}
		}
		if runErr != nil {
			return runErr
		}

		if cfg.Record != "" {
			// Recording still happens after an interrupt; the game is
			// over by now either way.
			if err := record(context.WithoutCancel(ctx), cfg.Record, game.History()); err != nil {
				return err
			}
		}
		return nil
	})
}

func record(ctx context.Context, path string, history []event.StepEvents) error {
	store, err := replay.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(ctx, history)
	if err != nil {
		return err
	}
	log.Printf("recorded replay %s to %s", id, path)
	return nil
}
