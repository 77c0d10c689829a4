package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/antoniostano/babybot/internal/dispatch"
	"github.com/antoniostano/babybot/internal/intent"
)

// directory resolves guild data the gateway payload does not carry.
type directory interface {
	Nick(guildID, userID string) string
	// Guild returns the cached guild with its roles.
	Guild(guildID string) (*discordgo.Guild, bool)
	// MemberRoles is only consulted when the message has no member attached.
	MemberRoles(guildID, userID string) ([]string, bool)
}

// displayName prefers the guild nickname, then the global display name, then
// the username.
func displayName(nick string, u *discordgo.User) string {
	if n := strings.TrimSpace(nick); n != "" {
		return n
	}
	if u == nil {
		return ""
	}
	if g := strings.TrimSpace(u.GlobalName); g != "" {
		return g
	}
	return u.Username
}

// guildAdministrator reports guild-level administrator rights: ownership or
// any held role (including @everyone) granting Administrator.
func guildAdministrator(guild *discordgo.Guild, userID string, roles []string) bool {
	if guild == nil {
		return false
	}
	if guild.OwnerID != "" && guild.OwnerID == userID {
		return true
	}
	held := make(map[string]struct{}, len(roles)+1)
	held[guild.ID] = struct{}{}
	for _, id := range roles {
		held[id] = struct{}{}
	}
	for _, role := range guild.Roles {
		if role == nil {
			continue
		}
		if _, ok := held[role.ID]; ok && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func toEvent(m *discordgo.Message, dir directory) (dispatch.Event, bool) {
	if m == nil || m.Author == nil || m.GuildID == "" {
		return dispatch.Event{}, false
	}

	var (
		nick  string
		roles []string
	)
	if m.Member != nil {
		nick = m.Member.Nick
		roles = m.Member.Roles
	} else {
		nick = dir.Nick(m.GuildID, m.Author.ID)
		roles, _ = dir.MemberRoles(m.GuildID, m.Author.ID)
	}
	actor := intent.Actor{
		ID:          m.Author.ID,
		DisplayName: displayName(nick, m.Author),
		Bot:         m.Author.Bot,
	}
	if guild, ok := dir.Guild(m.GuildID); ok {
		actor.Elevated = guildAdministrator(guild, m.Author.ID, roles)
	}

	mentions := make([]intent.Actor, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		if u == nil {
			continue
		}
		mentions = append(mentions, intent.Actor{
			ID:          u.ID,
			DisplayName: displayName(dir.Nick(m.GuildID, u.ID), u),
			Bot:         u.Bot,
		})
	}

	return dispatch.Event{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Message: intent.Message{
			Text:     m.Content,
			Actor:    actor,
			Mentions: mentions,
		},
	}, true
}

// stateDirectory reads from the session's state cache.
type stateDirectory struct {
	state *discordgo.State
}

func (d stateDirectory) Nick(guildID, userID string) string {
	if d.state == nil {
		return ""
	}
	member, err := d.state.Member(guildID, userID)
	if err != nil || member == nil {
		return ""
	}
	return member.Nick
}

func (d stateDirectory) Guild(guildID string) (*discordgo.Guild, bool) {
	if d.state == nil {
		return nil, false
	}
	guild, err := d.state.Guild(guildID)
	if err != nil || guild == nil {
		return nil, false
	}
	return guild, true
}

func (d stateDirectory) MemberRoles(guildID, userID string) ([]string, bool) {
	if d.state == nil {
		return nil, false
	}
	member, err := d.state.Member(guildID, userID)
	if err != nil || member == nil {
		return nil, false
	}
	return member.Roles, true
}
