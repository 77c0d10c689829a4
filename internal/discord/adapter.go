package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/dispatch"
	"github.com/antoniostano/babybot/internal/observability"
	"github.com/antoniostano/babybot/internal/voice"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

type Options struct {
	FFmpegPath string
	Logger     *zap.Logger
}

// Adapter connects the bot to the Discord gateway. It implements
// dispatch.Platform and voice.Connections.
type Adapter struct {
	session *discordgo.Session
	ffmpeg  string
	logger  *zap.Logger

	mu      sync.RWMutex
	baseCtx context.Context
}

func New(token string, opts Options) (*Adapter, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = intents
	s.StateEnabled = true

	ffmpeg := strings.TrimSpace(opts.FFmpegPath)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Adapter{
		session: s,
		ffmpeg:  ffmpeg,
		logger:  observability.OrNop(opts.Logger),
		baseCtx: context.Background(),
	}, nil
}

// OnMessage routes guild messages to handle. discordgo runs each event on its
// own goroutine.
func (a *Adapter) OnMessage(handle func(ctx context.Context, ev dispatch.Event)) {
	a.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		ev, ok := toEvent(m.Message, stateDirectory{state: s.State})
		if !ok {
			return
		}
		handle(a.context(), ev)
	})
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.logger.Info("discord session ready",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)),
		)
	})
}

// Open connects to the gateway. Handlers receive contexts derived from ctx.
func (a *Adapter) Open(ctx context.Context) error {
	a.mu.Lock()
	a.baseCtx = ctx
	a.mu.Unlock()
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close leaves every voice channel and closes the gateway.
func (a *Adapter) Close() error {
	a.session.RLock()
	conns := make([]*discordgo.VoiceConnection, 0, len(a.session.VoiceConnections))
	for _, vc := range a.session.VoiceConnections {
		conns = append(conns, vc)
	}
	a.session.RUnlock()
	for _, vc := range conns {
		if err := vc.Disconnect(); err != nil {
			a.logger.Warn("voice disconnect on shutdown failed", zap.String("guild_id", vc.GuildID), zap.Error(err))
		}
	}
	return a.session.Close()
}

func (a *Adapter) SendText(ctx context.Context, channelID, text string) error {
	_, err := a.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (a *Adapter) Typing(ctx context.Context, channelID string) error {
	return a.session.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

func (a *Adapter) ActorVoiceChannel(guildID, userID string) (string, bool) {
	if a.session.State == nil {
		return "", false
	}
	vs, err := a.session.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

// JoinVoice connects to channelID; an existing connection in the guild is
// moved instead of reopened.
func (a *Adapter) JoinVoice(_ context.Context, guildID, channelID string) error {
	vc := a.voiceConnection(guildID)
	switch planJoin(vc, channelID) {
	case joinStay:
		return nil
	case joinMove:
		if err := vc.ChangeChannel(channelID, false, true); err != nil {
			return fmt.Errorf("move voice connection: %w", err)
		}
		return nil
	default:
		if _, err := a.session.ChannelVoiceJoin(guildID, channelID, false, true); err != nil {
			return fmt.Errorf("join voice channel: %w", err)
		}
		return nil
	}
}

type joinAction int

const (
	joinOpen joinAction = iota
	joinMove
	joinStay
)

// planJoin decides how to reach channelID given the guild's current
// connection. Only a ready connection can be moved; anything else is
// (re)opened through ChannelVoiceJoin, which reuses the existing entry.
func planJoin(vc *discordgo.VoiceConnection, channelID string) joinAction {
	if !ready(vc) {
		return joinOpen
	}
	vc.RLock()
	current := vc.ChannelID
	vc.RUnlock()
	if current == channelID {
		return joinStay
	}
	return joinMove
}

func (a *Adapter) LeaveVoice(_ context.Context, guildID string) error {
	vc := a.voiceConnection(guildID)
	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

// InVoice reports whether the guild has a voice connection, including one that
// is still handshaking or reconnecting.
func (a *Adapter) InVoice(guildID string) bool {
	return a.voiceConnection(guildID) != nil
}

// Voice implements voice.Connections.
func (a *Adapter) Voice(guildID string) (voice.Connection, bool) {
	vc := a.voiceConnection(guildID)
	if vc == nil {
		return nil, false
	}
	return &voiceConn{vc: vc, ffmpeg: a.ffmpeg}, true
}

func (a *Adapter) voiceConnection(guildID string) *discordgo.VoiceConnection {
	a.session.RLock()
	defer a.session.RUnlock()
	return a.session.VoiceConnections[guildID]
}

func ready(vc *discordgo.VoiceConnection) bool {
	if vc == nil {
		return false
	}
	vc.RLock()
	defer vc.RUnlock()
	return vc.Ready
}

func (a *Adapter) context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.baseCtx
}
