package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/config"
	"github.com/antoniostano/babybot/internal/discord"
	"github.com/antoniostano/babybot/internal/dispatch"
	"github.com/antoniostano/babybot/internal/generation"
	"github.com/antoniostano/babybot/internal/httpapi"
	"github.com/antoniostano/babybot/internal/memory"
	"github.com/antoniostano/babybot/internal/observability"
	"github.com/antoniostano/babybot/internal/policy"
	"github.com/antoniostano/babybot/internal/session"
	"github.com/antoniostano/babybot/internal/voice"
)

const (
	janitorInterval    = 30 * time.Second
	generationRetries  = 2
	generationBackoff  = 500 * time.Millisecond
	generationRetryCap = 4 * time.Second
)

// App is the fully wired bot process.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Memory     *memory.Store
	Sessions   *session.Manager
	Discord    *discord.Adapter
	Dispatcher *dispatch.Dispatcher
	API        *httpapi.Server
	Voice      VoiceInfo
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = observability.OrNop(logger)
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	storage, err := memory.NewStorage(ctx, memory.StorageConfig{
		Backend:     cfg.MemoryBackend,
		FilePath:    cfg.MemoryFile,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("memory storage init failed: %w", err)
	}
	store := memory.Load(ctx, storage, memory.Options{
		Window:    cfg.MemoryContextWindow,
		RedactPII: cfg.MemoryRedactPII,
		Logger:    logger.Named("memory"),
		Metrics:   metrics,
	})

	gen, err := generation.NewGenerator(cfg.GenerationProvider, generation.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.ChatModel,
		MaxRetries: generationRetries,
		RetryBase:  generationBackoff,
		RetryCap:   generationRetryCap,
	}, logger.Named("generation"))
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("generation provider init failed: %w", err)
	}

	vs, err := resolveVoice(cfg)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	adapter, err := discord.New(cfg.DiscordToken, discord.Options{
		FFmpegPath: cfg.FFmpegPath,
		Logger:     logger.Named("discord"),
	})
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	sessions := session.NewManager(cfg.VoiceIdleTimeout)
	sessions.SetExpireHook(func(s *session.Session) {
		if err := adapter.LeaveVoice(ctx, s.GuildID); err != nil {
			logger.Warn("idle voice leave failed", zap.String("guild_id", s.GuildID), zap.Error(err))
		}
		metrics.VoiceEvent("expire", sessions.ActiveCount())
		logger.Info("voice session expired", zap.String("guild_id", s.GuildID), zap.String("session_id", s.ID))
	})

	gate := voice.NewGate(adapter, vs.synth, voice.GateOptions{
		PauseMin: cfg.VoicePauseMin,
		PauseMax: cfg.VoicePauseMax,
		Sessions: sessions,
		Metrics:  metrics,
		Logger:   logger.Named("voice"),
	})

	dispatcher := dispatch.New(adapter, store, policy.NewOracle(cfg.PrivilegedUserIDs), gen, gate, dispatch.Options{
		TypingMin: cfg.TypingDelayMin,
		TypingMax: cfg.TypingDelayMax,
		Sessions:  sessions,
		Metrics:   metrics,
		Logger:    logger.Named("dispatch"),
	})
	adapter.OnMessage(dispatcher.Handle)

	cfg.VoiceProvider = vs.info.Provider
	api := httpapi.New(cfg, store, sessions, metrics)

	logger.Info("bot wired",
		zap.String("generation_provider", cfg.GenerationProvider),
		zap.String("voice_provider", vs.info.Provider),
		zap.String("voice_detail", vs.info.Detail),
		zap.String("memory_backend", cfg.MemoryBackend),
		zap.Int("memory_users", store.Users()),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Memory:     store,
		Sessions:   sessions,
		Discord:    adapter,
		Dispatcher: dispatcher,
		API:        api,
		Voice:      vs.info,
	}, nil
}

// Run connects to Discord, serves the ops API and blocks until ctx is done.
// Shutdown leaves voice, closes the gateway and flushes memory.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Sessions.StartJanitor(runCtx, janitorInterval)

	if err := a.Discord.Open(runCtx); err != nil {
		a.closeMemory()
		return err
	}
	a.API.SetReady(true)

	var httpServer *http.Server
	serveErr := make(chan error, 1)
	if a.Config.BindAddr != "" {
		httpServer = &http.Server{
			Addr:              a.Config.BindAddr,
			Handler:           a.API.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.Logger.Info("ops server listening", zap.String("addr", a.Config.BindAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err := <-serveErr:
		runErr = fmt.Errorf("ops server: %w", err)
	}

	a.API.SetReady(false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer shutdownCancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("graceful ops shutdown failed", zap.Error(err))
			_ = httpServer.Close()
		}
	}
	if err := a.Discord.Close(); err != nil {
		a.Logger.Warn("discord close failed", zap.Error(err))
	}
	if err := a.Memory.Close(shutdownCtx); err != nil {
		a.Logger.Warn("memory close failed", zap.Error(err))
	}

	a.Logger.Info("shutdown complete")
	return runErr
}

func (a *App) closeMemory() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := a.Memory.Close(ctx); err != nil {
		a.Logger.Warn("memory close failed", zap.Error(err))
	}
}
