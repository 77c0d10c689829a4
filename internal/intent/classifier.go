package intent

import (
	"regexp"
	"strings"
)

const (
	wakeWord      = "baby"
	commandPrefix = "!"

	// DefaultTarget names the roast target when nobody is mentioned.
	DefaultTarget = "ye banda"
	// DefaultGreeting replaces a bare wake word.
	DefaultGreeting = "Hi Baby, tum kaisi ho?"
)

var (
	wakePattern = regexp.MustCompile(`(?i)^baby\b[\s,.:;!?\-]*`)

	privilegedTriggers = []string{"baby roast song", "baby roast", "baby mazak"}
	roastSongTrigger   = "baby roast song"

	singTriggers  = []string{"gana gao", "gaana gao", "song gao", "sing a song", "ek song gao", "ek gana gao"}
	roastKeywords = []string{"roast", "mazaak", "mazak"}
	songKeywords  = []string{"song", "gana", "gaana"}
)

// PrivilegeFunc decides whether an actor may run privileged behaviors.
type PrivilegeFunc func(Actor) bool

// Classify maps a message to an Intent. Rules are evaluated in order and the
// first match wins; the result depends only on the message and privileged.
func Classify(msg Message, privileged PrivilegeFunc) Intent {
	if msg.Actor.Bot {
		return Intent{Kind: KindIgnore}
	}
	isPrivileged := func() bool {
		return privileged != nil && privileged(msg.Actor)
	}

	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)

	switch lower {
	case "!join":
		return Intent{Kind: KindJoinVoice}
	case "!leave":
		return Intent{Kind: KindLeaveVoice}
	}

	if hasAnyPrefix(lower, privilegedTriggers) {
		if !isPrivileged() {
			return deflect(msg.Actor, OriginTriggerPhrase)
		}
		target := resolveTarget(msg.Mentions)
		if strings.HasPrefix(lower, roastSongTrigger) {
			return Intent{Kind: KindPrivilegedRoastSong, Target: target}
		}
		style := StylePlayful
		if strings.Contains(lower, "roast") {
			style = StyleRoast
		}
		return Intent{Kind: KindPrivilegedRoast, Target: target, Style: style}
	}

	if strings.HasPrefix(lower, wakeWord) {
		prompt := StripWake(text)
		stripped := strings.ToLower(prompt)
		if prompt == "" {
			prompt = DefaultGreeting
		}

		mentionsRoast := containsAny(stripped, roastKeywords)
		if containsAny(stripped, singTriggers) && !mentionsRoast {
			return Intent{Kind: KindSingRomantic}
		}
		if mentionsRoast && containsAny(stripped, songKeywords) {
			if !isPrivileged() {
				return deflect(msg.Actor, OriginSongRequest)
			}
			return Intent{Kind: KindPrivilegedRoastSong, Target: resolveTarget(msg.Mentions)}
		}
		return Intent{Kind: KindChat, UserID: msg.Actor.ID, Prompt: prompt}
	}

	if strings.HasPrefix(text, commandPrefix) && !isPrivileged() {
		return Intent{
			Kind:      KindUnrecognizedPrivilegedCommand,
			ActorName: msg.Actor.DisplayName,
			Origin:    OriginCommand,
		}
	}

	return Intent{Kind: KindIgnore}
}

// StripWake removes a leading wake word and the punctuation or whitespace run
// that follows it. Text without a leading wake word is returned trimmed.
func StripWake(text string) string {
	t := strings.TrimSpace(text)
	if loc := wakePattern.FindStringIndex(t); loc != nil {
		return strings.TrimSpace(t[loc[1]:])
	}
	return t
}

// IsCommand reports whether text uses the control-command prefix.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), commandPrefix)
}

func deflect(actor Actor, origin Origin) Intent {
	return Intent{Kind: KindSelfRoastDeflection, ActorName: actor.DisplayName, Origin: origin}
}

func resolveTarget(mentions []Actor) string {
	if len(mentions) == 0 {
		return DefaultTarget
	}
	if name := strings.TrimSpace(mentions[0].DisplayName); name != "" {
		return name
	}
	return DefaultTarget
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
