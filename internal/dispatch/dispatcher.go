package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/generation"
	"github.com/antoniostano/babybot/internal/intent"
	"github.com/antoniostano/babybot/internal/memory"
	"github.com/antoniostano/babybot/internal/observability"
	"github.com/antoniostano/babybot/internal/session"
	"github.com/antoniostano/babybot/internal/voice"
)

// Platform is the chat surface replies are delivered to.
type Platform interface {
	SendText(ctx context.Context, channelID, text string) error
	Typing(ctx context.Context, channelID string) error
	// ActorVoiceChannel returns the voice channel userID is currently in.
	ActorVoiceChannel(guildID, userID string) (string, bool)
	// JoinVoice connects to channelID, moving an existing connection if needed.
	JoinVoice(ctx context.Context, guildID, channelID string) error
	LeaveVoice(ctx context.Context, guildID string) error
	// InVoice reports whether a voice connection exists for the guild, ready
	// or not.
	InVoice(guildID string) bool
}

// Memory is the conversation history the chat flow reads and extends.
type Memory interface {
	ContextWindow(userID string, size int) []memory.Exchange
	Append(ctx context.Context, userID, userText, botText string)
}

type Privileges interface {
	IsPrivileged(actor intent.Actor) bool
}

type Speaker interface {
	ShouldSpeak(guildID string) bool
	Speak(ctx context.Context, guildID, text string)
}

// Event is one inbound guild message.
type Event struct {
	Message   intent.Message
	GuildID   string
	ChannelID string
}

type Options struct {
	TypingMin time.Duration
	TypingMax time.Duration
	Sessions  *session.Manager
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// Dispatcher turns classified messages into replies, memory updates and speech.
type Dispatcher struct {
	platform   Platform
	memory     Memory
	privileges Privileges
	generator  generation.Generator
	speaker    Speaker
	sessions   *session.Manager
	metrics    *observability.Metrics
	logger     *zap.Logger
	typingMin  time.Duration
	typingMax  time.Duration

	mu        sync.Mutex
	userLocks map[string]*userLock
}

func New(platform Platform, mem Memory, privileges Privileges, gen generation.Generator, speaker Speaker, opts Options) *Dispatcher {
	if gen == nil {
		gen = generation.Unavailable{}
	}
	return &Dispatcher{
		platform:   platform,
		memory:     mem,
		privileges: privileges,
		generator:  gen,
		speaker:    speaker,
		sessions:   opts.Sessions,
		metrics:    opts.Metrics,
		logger:     observability.OrNop(opts.Logger),
		typingMin:  opts.TypingMin,
		typingMax:  opts.TypingMax,
		userLocks:  make(map[string]*userLock),
	}
}

// Handle processes one message. It never panics on collaborator failures and
// never returns provider errors; every failure degrades to a reply or silence.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	start := time.Now()
	in := intent.Classify(ev.Message, d.isPrivileged)
	if in.Kind == intent.KindIgnore {
		return
	}
	d.metrics.IncMessage(string(in.Kind))

	switch in.Kind {
	case intent.KindJoinVoice:
		d.joinVoice(ctx, ev)
	case intent.KindLeaveVoice:
		d.leaveVoice(ctx, ev)
	case intent.KindChat:
		d.chat(ctx, ev, in)
	case intent.KindPrivilegedRoast:
		text, ok := d.generate(ctx, roastRequest(in.Target, in.Style))
		d.reply(ctx, ev, text, text, ok)
	case intent.KindPrivilegedRoastSong:
		d.typing(ctx, ev)
		lyrics, ok := d.generate(ctx, songRequest(in.Target))
		d.reply(ctx, ev, "🎶 Roast song for **"+in.Target+"**:\n"+lyrics, singingCue+lyrics, ok)
	case intent.KindSingRomantic:
		d.typing(ctx, ev)
		lyrics, ok := d.generate(ctx, songRequest(""))
		d.reply(ctx, ev, "🎶 Baby is singing for you:\n"+lyrics, singingCue+lyrics, ok)
	case intent.KindSelfRoastDeflection, intent.KindUnrecognizedPrivilegedCommand:
		if in.Origin == intent.OriginSongRequest {
			d.typing(ctx, ev)
		}
		text, ok := d.generate(ctx, roastRequest(in.ActorName, intent.StyleRoast))
		d.reply(ctx, ev, deflectionMarker(in.Origin)+" "+text, text, ok)
	}
	// Join and leave are gateway round trips, not replies.
	if in.Replies() {
		d.metrics.ObserveStage(observability.StageDispatch, time.Since(start))
	}
}

func (d *Dispatcher) chat(ctx context.Context, ev Event, in intent.Intent) {
	d.typing(ctx, ev)

	// Held across read, generate and append so a user's exchanges are
	// recorded in the order their messages were handled.
	unlock := d.lockUser(in.UserID)
	history := d.memory.ContextWindow(in.UserID, 0)
	reply, ok := d.generate(ctx, chatRequest(history, in.Prompt))
	if ok {
		d.memory.Append(ctx, in.UserID, in.Prompt, reply)
	}
	unlock()

	if ok && strings.HasPrefix(reply, "!") && d.isPrivileged(ev.Message.Actor) {
		d.reply(ctx, ev, reply, relaySpeechPrefix+reply, true)
		return
	}
	d.reply(ctx, ev, "💖 "+reply, reply, ok)
}

func (d *Dispatcher) joinVoice(ctx context.Context, ev Event) {
	channelID, ok := d.platform.ActorVoiceChannel(ev.GuildID, ev.Message.Actor.ID)
	if !ok {
		d.send(ctx, ev, ReplyJoinNoVoice)
		return
	}
	if err := d.platform.JoinVoice(ctx, ev.GuildID, channelID); err != nil {
		d.logger.Warn("voice join failed",
			zap.String("guild_id", ev.GuildID),
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
		d.send(ctx, ev, ReplyJoinFailed)
		return
	}
	if d.sessions != nil {
		s := d.sessions.Join(ev.GuildID, channelID)
		d.logger.Info("voice session joined", zap.String("session_id", s.ID), zap.String("guild_id", ev.GuildID))
		d.metrics.VoiceEvent("join", d.sessions.ActiveCount())
	}
	d.send(ctx, ev, ReplyJoined)
}

func (d *Dispatcher) leaveVoice(ctx context.Context, ev Event) {
	if !d.platform.InVoice(ev.GuildID) {
		return
	}
	if err := d.platform.LeaveVoice(ctx, ev.GuildID); err != nil {
		d.logger.Warn("voice leave failed", zap.String("guild_id", ev.GuildID), zap.Error(err))
		d.send(ctx, ev, ReplyLeaveFailed)
		return
	}
	if d.sessions != nil {
		_, _ = d.sessions.End(ev.GuildID)
		d.metrics.VoiceEvent("leave", d.sessions.ActiveCount())
	}
	d.send(ctx, ev, ReplyLeft)
}

// generate returns the model text, or a placeholder with ok=false.
func (d *Dispatcher) generate(ctx context.Context, req generation.Request) (string, bool) {
	start := time.Now()
	text, err := d.generator.Generate(ctx, req)
	d.metrics.ObserveStage(observability.StageGeneration, time.Since(start))
	text = strings.TrimSpace(text)

	switch {
	case errors.Is(err, generation.ErrUnavailable):
		d.metrics.IncGenerationError("unavailable")
		d.logger.Error("generation client unavailable")
		return PlaceholderNoAI, false
	case err != nil:
		d.metrics.IncGenerationError("provider")
		d.logger.Warn("generation failed", zap.Error(err))
		return PlaceholderFailed, false
	case text == "":
		d.metrics.IncGenerationError("empty")
		d.logger.Warn("generation returned empty text")
		return PlaceholderFailed, false
	}
	return text, true
}

// reply sends text and, when generation succeeded and the bot is in voice,
// speaks spoken. Placeholders are never spoken.
func (d *Dispatcher) reply(ctx context.Context, ev Event, text, spoken string, generated bool) {
	d.send(ctx, ev, text)
	if !generated || d.speaker == nil || !d.speaker.ShouldSpeak(ev.GuildID) {
		return
	}
	d.speaker.Speak(ctx, ev.GuildID, spoken)
}

func (d *Dispatcher) send(ctx context.Context, ev Event, text string) {
	if err := d.platform.SendText(ctx, ev.ChannelID, text); err != nil {
		d.logger.Warn("send reply failed", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}
}

func (d *Dispatcher) typing(ctx context.Context, ev Event) {
	start := time.Now()
	if err := d.platform.Typing(ctx, ev.ChannelID); err != nil {
		d.logger.Debug("typing indicator failed", zap.Error(err))
	}
	_ = voice.HumanPause(ctx, d.typingMin, d.typingMax)
	d.metrics.ObserveStage(observability.StageTyping, time.Since(start))
}

func (d *Dispatcher) isPrivileged(actor intent.Actor) bool {
	return d.privileges != nil && d.privileges.IsPrivileged(actor)
}

// userLock is a per-user mutex shared by every in-flight chat of that user.
// refs counts holders and waiters; the entry is dropped when it reaches zero
// so the map only holds users with a chat in progress.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// lockUser blocks until userID's chat lock is held and returns its release.
func (d *Dispatcher) lockUser(userID string) (unlock func()) {
	d.mu.Lock()
	l, ok := d.userLocks[userID]
	if !ok {
		l = &userLock{}
		d.userLocks[userID] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.userLocks, userID)
		}
		d.mu.Unlock()
	}
}
