package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeDirectory struct {
	nicks  map[string]string
	guild  *discordgo.Guild
	cached map[string][]string
}

func (d fakeDirectory) Nick(_, userID string) string { return d.nicks[userID] }

func (d fakeDirectory) Guild(string) (*discordgo.Guild, bool) {
	return d.guild, d.guild != nil
}

func (d fakeDirectory) MemberRoles(_, userID string) ([]string, bool) {
	roles, ok := d.cached[userID]
	return roles, ok
}

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g1", Permissions: discordgo.PermissionSendMessages},
			{ID: "admins", Permissions: discordgo.PermissionAdministrator},
			{ID: "mods", Permissions: discordgo.PermissionManageMessages},
		},
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		nick string
		user *discordgo.User
		want string
	}{
		{"Bobby", &discordgo.User{Username: "bob", GlobalName: "Bob B"}, "Bobby"},
		{"", &discordgo.User{Username: "bob", GlobalName: "Bob B"}, "Bob B"},
		{"", &discordgo.User{Username: "bob"}, "bob"},
		{"", nil, ""},
	}
	for _, tc := range cases {
		if got := displayName(tc.nick, tc.user); got != tc.want {
			t.Fatalf("displayName(%q, %+v) = %q, want %q", tc.nick, tc.user, got, tc.want)
		}
	}
}

func TestToEventMapsActorAndMentions(t *testing.T) {
	dir := fakeDirectory{
		nicks: map[string]string{"2": "Bobby"},
		guild: testGuild(),
	}
	msg := &discordgo.Message{
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "baby roast song <@2>",
		Author:    &discordgo.User{ID: "1", Username: "alice"},
		Member:    &discordgo.Member{Nick: "Ali", Roles: []string{"admins"}},
		Mentions:  []*discordgo.User{{ID: "2", Username: "bob"}},
	}

	ev, ok := toEvent(msg, dir)
	if !ok {
		t.Fatalf("toEvent() ok = false")
	}
	if ev.GuildID != "g1" || ev.ChannelID != "c1" || ev.Message.Text != msg.Content {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Message.Actor.DisplayName != "Ali" || !ev.Message.Actor.Elevated {
		t.Fatalf("actor = %+v, want Ali elevated", ev.Message.Actor)
	}
	if len(ev.Message.Mentions) != 1 || ev.Message.Mentions[0].DisplayName != "Bobby" {
		t.Fatalf("mentions = %+v", ev.Message.Mentions)
	}
}

func TestToEventSkipsDirectMessages(t *testing.T) {
	msg := &discordgo.Message{ChannelID: "dm", Author: &discordgo.User{ID: "1"}}
	if _, ok := toEvent(msg, fakeDirectory{}); ok {
		t.Fatalf("toEvent() ok = true for a message without guild")
	}
}

func TestToEventAdminRoleFromMessageMember(t *testing.T) {
	// No member is cached; the roles come only from the message payload.
	dir := fakeDirectory{guild: testGuild()}
	msg := &discordgo.Message{
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "baby roast <@2>",
		Author:    &discordgo.User{ID: "7", Username: "admin"},
		Member:    &discordgo.Member{Roles: []string{"mods", "admins"}},
	}
	ev, ok := toEvent(msg, dir)
	if !ok {
		t.Fatalf("toEvent() ok = false")
	}
	if !ev.Message.Actor.Elevated {
		t.Fatalf("actor = %+v, want elevated from message roles", ev.Message.Actor)
	}
}

func TestToEventFallsBackToCachedRoles(t *testing.T) {
	dir := fakeDirectory{guild: testGuild(), cached: map[string][]string{"7": {"admins"}}}
	msg := &discordgo.Message{GuildID: "g1", Author: &discordgo.User{ID: "7", Username: "admin"}}
	ev, _ := toEvent(msg, dir)
	if !ev.Message.Actor.Elevated {
		t.Fatalf("actor = %+v, want elevated from cached member", ev.Message.Actor)
	}
}

func TestGuildAdministrator(t *testing.T) {
	g := testGuild()
	cases := []struct {
		name   string
		guild  *discordgo.Guild
		userID string
		roles  []string
		want   bool
	}{
		{"owner without roles", g, "owner", nil, true},
		{"admin role", g, "7", []string{"admins"}, true},
		{"moderator only", g, "7", []string{"mods"}, false},
		{"no roles", g, "7", nil, false},
		{"unknown guild", nil, "owner", []string{"admins"}, false},
		{"everyone is admin", &discordgo.Guild{ID: "g2", Roles: []*discordgo.Role{{ID: "g2", Permissions: discordgo.PermissionAdministrator}}}, "7", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := guildAdministrator(tc.guild, tc.userID, tc.roles); got != tc.want {
				t.Fatalf("guildAdministrator() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToEventWithoutGuildCacheIsNotElevated(t *testing.T) {
	msg := &discordgo.Message{GuildID: "g1", Author: &discordgo.User{ID: "9", Username: "eve", Bot: true}}
	ev, ok := toEvent(msg, fakeDirectory{cached: map[string][]string{"9": {"admins"}}})
	if !ok {
		t.Fatalf("toEvent() ok = false")
	}
	if ev.Message.Actor.Elevated || !ev.Message.Actor.Bot {
		t.Fatalf("actor = %+v, want bot and not elevated", ev.Message.Actor)
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := ffmpegArgs()
	joined := ""
	for _, a := range args {
		joined += a + " "
	}
	if joined != "-hide_banner -loglevel error -i pipe:0 -f s16le -ar 48000 -ac 2 pipe:1 " {
		t.Fatalf("ffmpegArgs() = %q", joined)
	}
}
