package intent

// Kind tags the response behavior a message resolves to.
type Kind string

const (
	KindIgnore                        Kind = "ignore"
	KindJoinVoice                     Kind = "join_voice"
	KindLeaveVoice                    Kind = "leave_voice"
	KindPrivilegedRoast               Kind = "privileged_roast"
	KindPrivilegedRoastSong           Kind = "privileged_roast_song"
	KindSelfRoastDeflection           Kind = "self_roast_deflection"
	KindSingRomantic                  Kind = "sing_romantic"
	KindChat                          Kind = "chat"
	KindUnrecognizedPrivilegedCommand Kind = "unrecognized_privileged_command"
)

// Style selects the tone of a roast.
type Style string

const (
	StyleRoast   Style = "roast"
	StylePlayful Style = "fun"
)

// Origin records which rule produced a deflection so replies can pick a tone marker.
type Origin string

const (
	OriginTriggerPhrase Origin = "trigger_phrase"
	OriginSongRequest   Origin = "song_request"
	OriginCommand       Origin = "command"
)

// Actor is the author of a message or a mentioned user.
type Actor struct {
	ID          string
	DisplayName string
	Bot         bool
	// Elevated is set by the platform when the actor holds an administrator role
	// in the guild the message was sent to.
	Elevated bool
}

// Message is the platform-independent input to Classify.
type Message struct {
	Text     string
	Actor    Actor
	Mentions []Actor
}

// Intent is the classified form of a message. Only the fields relevant to
// Kind are populated.
type Intent struct {
	Kind      Kind
	Target    string
	Style     Style
	ActorName string
	UserID    string
	Prompt    string
	Origin    Origin
}

// Replies reports whether the intent always produces exactly one text reply.
func (i Intent) Replies() bool {
	switch i.Kind {
	case KindIgnore, KindJoinVoice, KindLeaveVoice:
		return false
	default:
		return true
	}
}
