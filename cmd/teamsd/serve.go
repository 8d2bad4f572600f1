package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1jgo/teams/internal/admin"
	"github.com/l1jgo/teams/internal/command"
	"github.com/l1jgo/teams/internal/console"
	"github.com/l1jgo/teams/internal/core/event"
	coresys "github.com/l1jgo/teams/internal/core/system"
	"github.com/l1jgo/teams/internal/data"
	"github.com/l1jgo/teams/internal/hooks"
	"github.com/l1jgo/teams/internal/metrics"
	"github.com/l1jgo/teams/internal/registry"
	"github.com/l1jgo/teams/internal/scripting"
	"github.com/l1jgo/teams/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the team registry game loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	// 1. Config + logger
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 2. Storage
	printSection("Storage")
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	printOK(fmt.Sprintf("%s backend (%s)", cfg.Storage.Backend, cfg.Storage.Format))

	// 3. Data tables + hooks
	palette, err := data.LoadPalette(cfg.Data.Palette)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}
	printStat("Team colors", palette.Count())

	bus := event.NewBus()
	chain := hooks.Multi{hooks.Log{L: log}, hooks.Bus{B: bus}}
	if cfg.Scripting.Enabled {
		luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		chain = append(chain, luaEngine)
		printStat("Lua hooks", len(luaEngine.Handlers()))
		log.Debug("lua hooks loaded", zap.Strings("handlers", luaEngine.Handlers()))
	}

	// 4. Registry
	teams := registry.New(registry.Options{
		Store:  store,
		Hooks:  chain,
		Colors: palette,
		Log:    log,
	})
	rep := teams.Load(ctx)
	metrics.LoadFailures.Add(float64(len(rep.Failures)))
	printStat("Teams", rep.Teams)
	printStat("Known players", rep.KnownPlayers)
	if len(rep.Failures) > 0 {
		printStat("Skipped documents", len(rep.Failures))
	}
	fmt.Println()

	// 5. Commands + systems
	queue := command.NewQueue(cfg.Server.QueueSize, log)
	commands := command.NewRegistry(&command.Deps{Registry: teams, Colors: palette, Log: log})
	command.RegisterBuiltins(commands)

	var con *console.Console
	if cfg.Console.Enabled {
		con = console.New(os.Stdin, os.Stdout, queue, log)
	}
	notify := func(n system.Notice) {
		name := n.Player.String()
		if own, err := teams.PlayerTeam(n.Player); err == nil && own.PlayerName() != "" {
			name = own.PlayerName()
		}
		if con != nil {
			con.Println(fmt.Sprintf("[%s] %s", name, n.Text))
			return
		}
		log.Info("notice", zap.String("player", name), zap.String("text", n.Text))
	}

	board := &admin.Board{Server: cfg.Server.Name, StartedAt: time.Unix(cfg.Server.StartTime, 0).UTC()}
	persistSys := system.NewPersistenceSystem(teams, board, log, cfg.SaveIntervalTicks(), cfg.Persistence.FlushTimeout)

	runner := coresys.NewRunner()
	runner.Register(system.NewCommandSystem(queue, commands, teams, cfg.Server.MaxCommandsPerTick, cfg.Persistence.FlushTimeout, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewNotifySystem(bus, notify))
	runner.Register(persistSys)

	// Write back anything Load had to fix up (fresh registry id).
	persistSys.Flush()

	// 6. Outer surfaces
	var adminSrv *admin.Server
	if cfg.Admin.Enabled {
		adminSrv = admin.NewServer(cfg.Admin.BindAddress, queue, board, log)
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil {
				log.Error("admin server stopped", zap.Error(err))
			}
		}()
	}
	if con != nil {
		go con.ReadLoop()
	}

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	log.Info("game loop started", zap.String("server", cfg.Server.Name), zap.Duration("tick", cfg.Server.TickRate), zap.String("registry", teams.ID().String()))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if adminSrv != nil {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := adminSrv.Shutdown(sctx); err != nil {
					log.Warn("admin server shutdown", zap.Error(err))
				}
				scancel()
			}
			// drain what was already accepted, then save
			runner.TickPhase(coresys.PhaseCommand, cfg.Server.TickRate)
			if rep := persistSys.Flush(); len(rep.Failures) > 0 {
				return fmt.Errorf("final flush: %d writes failed", len(rep.Failures))
			}
			log.Info("server stopped")
			return nil
		}
	}
}
