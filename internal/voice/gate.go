package voice

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/observability"
)

// SessionRecorder receives voice activity for the guild session registry.
type SessionRecorder interface {
	Touch(guildID string) error
	RecordPlayback(guildID string) error
}

type GateOptions struct {
	PauseMin time.Duration
	PauseMax time.Duration
	Sessions SessionRecorder
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// Gate decides whether a reply is spoken and serializes playback per guild.
type Gate struct {
	conns    Connections
	synth    Synthesizer
	sessions SessionRecorder
	metrics  *observability.Metrics
	logger   *zap.Logger
	pauseMin time.Duration
	pauseMax time.Duration

	mu     sync.Mutex
	guilds map[string]*sync.Mutex
}

func NewGate(conns Connections, synth Synthesizer, opts GateOptions) *Gate {
	if synth == nil {
		synth = Unavailable{}
	}
	return &Gate{
		conns:    conns,
		synth:    synth,
		sessions: opts.Sessions,
		metrics:  opts.Metrics,
		logger:   observability.OrNop(opts.Logger),
		pauseMin: opts.PauseMin,
		pauseMax: opts.PauseMax,
		guilds:   make(map[string]*sync.Mutex),
	}
}

// ShouldSpeak reports whether guildID has a connected voice connection.
func (g *Gate) ShouldSpeak(guildID string) bool {
	_, ok := g.connection(guildID)
	return ok
}

// Speak synthesizes text and plays it in the guild's voice channel, blocking
// until playback finishes. Failures are logged and swallowed.
func (g *Gate) Speak(ctx context.Context, guildID, text string) {
	if !g.ShouldSpeak(guildID) {
		return
	}
	text = SanitizeSpeechText(text)
	if text == "" {
		g.metrics.IncSpeech("empty")
		return
	}

	if g.sessions != nil {
		_ = g.sessions.Touch(guildID)
	}

	lock := g.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	if err := HumanPause(ctx, g.pauseMin, g.pauseMax); err != nil {
		return
	}

	synthStart := time.Now()
	clip, err := g.synth.Synthesize(ctx, text)
	g.metrics.ObserveStage(observability.StageSynthesis, time.Since(synthStart))
	if err != nil {
		g.logger.Warn("speech synthesis failed", zap.String("guild_id", guildID), zap.Error(err))
		g.metrics.IncSpeech("synthesis_error")
		return
	}
	if clip.Empty() {
		g.metrics.IncSpeech("empty")
		return
	}

	// The bot may have left the channel while synthesis was running.
	conn, ok := g.connection(guildID)
	if !ok {
		g.metrics.IncSpeech("disconnected")
		return
	}

	playStart := time.Now()
	done, err := conn.Play(ctx, clip)
	if err != nil {
		g.logger.Warn("voice playback failed to start", zap.String("guild_id", guildID), zap.Error(err))
		g.metrics.IncSpeech("playback_error")
		return
	}
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	g.metrics.ObserveStage(observability.StagePlayback, time.Since(playStart))
	if err != nil {
		g.logger.Warn("voice playback failed", zap.String("guild_id", guildID), zap.Error(err))
		g.metrics.IncSpeech("playback_error")
		return
	}

	if g.sessions != nil {
		_ = g.sessions.RecordPlayback(guildID)
	}
	g.metrics.IncSpeech("played")
}

func (g *Gate) connection(guildID string) (Connection, bool) {
	if g.conns == nil || guildID == "" {
		return nil, false
	}
	conn, ok := g.conns.Voice(guildID)
	if !ok || conn == nil || !conn.Connected() {
		return nil, false
	}
	return conn, true
}

func (g *Gate) guildLock(guildID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.guilds[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.guilds[guildID] = l
	}
	return l
}

// HumanPause waits a random duration in [lo, hi] or until ctx is done.
func HumanPause(ctx context.Context, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d += time.Duration(rand.Int63n(int64(hi - lo + 1)))
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
