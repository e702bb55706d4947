package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/selfgo/internal/afk"
	"github.com/nextlevelbuilder/selfgo/internal/command"
	"github.com/nextlevelbuilder/selfgo/internal/config"
	"github.com/nextlevelbuilder/selfgo/internal/scheduler"
	"github.com/nextlevelbuilder/selfgo/internal/services"
	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/store/sqlite"
	"github.com/nextlevelbuilder/selfgo/internal/transport/telegram"
)

// errRestart marks a shutdown requested by the .restart command. The
// process exits 0 so the supervisor relaunches it.
var errRestart = errors.New("restart requested")

func runBot() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logPath := config.ExpandHome(cfg.Log.File)
	logger, logClose, err := buildLogger(logPath)
	if err != nil {
		slog.Error("failed to open log file", "path", logPath, "error", err)
		os.Exit(1)
	}
	defer logClose()
	slog.SetDefault(logger)

	dbPath := config.ExpandHome(cfg.Storage.Path)
	db, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	stores := *sqlite.NewStores(db)

	tp, err := telegram.New(cfg)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	afkState := rehydrateAFK(ctx, cfg, stores, logger)

	env := &command.Env{
		Cfg:       cfg,
		T:         tp,
		Stores:    stores,
		AFK:       afkState,
		Flood:     command.NewFloodTracker(),
		Log:       logger,
		Weather:   services.NewWeatherClient(cfg.WeatherKey()),
		Wiki:      services.NewWikiClient(),
		Urban:     services.NewUrbanClient(),
		Time:      services.NewTimeClient(),
		Shorten:   services.NewShortenClient(),
		QR:        services.NewQRClient(),
		StartedAt: time.Now(),
		LogPath:   logPath,
		Restart:   func() { cancel(errRestart) },
	}
	dispatcher := command.NewDispatcher(env, command.NewRegistry())
	runner := scheduler.New(cfg, tp, stores, logger)

	updates, err := tp.Updates(ctx)
	if err != nil {
		logger.Error("failed to start update stream", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx, updates) })
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error { return config.Watch(gctx, cfgPath, cfg) })

	logger.Info("selfgo running", "prefix", cfg.CommandPrefix(), "owner_id", cfg.OwnerID())

	err = g.Wait()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if cerr := tp.Close(shutdownCtx); cerr != nil {
		logger.Warn("transport close", "error", cerr)
	}

	switch {
	case errors.Is(context.Cause(ctx), errRestart):
		logger.Info("restarting")
	case err != nil && !errors.Is(err, context.Canceled):
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	default:
		logger.Info("bot stopped")
	}
}

// buildLogger mirrors logs to the configured file so .logs can upload
// them; an empty path logs to stdout only.
func buildLogger(path string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stdout
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stdout, f)
		closeFn = func() { _ = f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// rehydrateAFK restores the persisted AFK toggle so a restart does not
// silently drop away mode. The cooldown map starts empty on purpose.
func rehydrateAFK(ctx context.Context, cfg *config.Config, stores store.Stores, logger *slog.Logger) *afk.State {
	state := afk.New(cfg.CooldownWindow())
	saved, err := stores.AFK.Get(ctx, cfg.OwnerID())
	if errors.Is(err, store.ErrNotFound) {
		return state
	}
	if err != nil {
		logger.Warn("restore afk state", "error", err)
		return state
	}
	if saved.Active {
		state.Activate(saved.Reason, saved.StartedAt)
		logger.Info("afk mode restored", "since", saved.StartedAt)
	}
	return state
}
