package intent

import "testing"

var (
	admin = Actor{ID: "1001", DisplayName: "admin1"}
	user  = Actor{ID: "2002", DisplayName: "user2"}
	bob   = Actor{ID: "3003", DisplayName: "bob"}
)

func privilegedIDs(ids ...string) PrivilegeFunc {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(a Actor) bool {
		_, ok := set[a.ID]
		return ok || a.Elevated
	}
}

func TestClassify(t *testing.T) {
	isAdmin := privilegedIDs(admin.ID)
	cases := []struct {
		name string
		msg  Message
		want Intent
	}{
		{
			name: "join",
			msg:  Message{Text: "  !JOIN ", Actor: user},
			want: Intent{Kind: KindJoinVoice},
		},
		{
			name: "leave",
			msg:  Message{Text: "!leave", Actor: user},
			want: Intent{Kind: KindLeaveVoice},
		},
		{
			name: "non privileged roast deflects",
			msg:  Message{Text: "baby roast @bob", Actor: user, Mentions: []Actor{bob}},
			want: Intent{Kind: KindSelfRoastDeflection, ActorName: "user2", Origin: OriginTriggerPhrase},
		},
		{
			name: "privileged roast song",
			msg:  Message{Text: "baby roast song @bob", Actor: admin, Mentions: []Actor{bob}},
			want: Intent{Kind: KindPrivilegedRoastSong, Target: "bob"},
		},
		{
			name: "privileged roast",
			msg:  Message{Text: "Baby Roast <@3003>", Actor: admin, Mentions: []Actor{bob}},
			want: Intent{Kind: KindPrivilegedRoast, Target: "bob", Style: StyleRoast},
		},
		{
			name: "privileged mazak defaults to playful",
			msg:  Message{Text: "baby mazak karo", Actor: admin},
			want: Intent{Kind: KindPrivilegedRoast, Target: DefaultTarget, Style: StylePlayful},
		},
		{
			name: "elevated role is privileged",
			msg:  Message{Text: "baby mazak @bob", Actor: Actor{ID: "9", DisplayName: "mod", Elevated: true}, Mentions: []Actor{bob}},
			want: Intent{Kind: KindPrivilegedRoast, Target: "bob", Style: StylePlayful},
		},
		{
			name: "romantic song for anyone",
			msg:  Message{Text: "baby gaana gao", Actor: user},
			want: Intent{Kind: KindSingRomantic},
		},
		{
			name: "roast song request via wake word non privileged",
			msg:  Message{Text: "baby, ek mazaak wala song sunao", Actor: user},
			want: Intent{Kind: KindSelfRoastDeflection, ActorName: "user2", Origin: OriginSongRequest},
		},
		{
			name: "roast song request via wake word privileged",
			msg:  Message{Text: "baby, mazaak wala gaana gao @bob", Actor: admin, Mentions: []Actor{bob}},
			want: Intent{Kind: KindPrivilegedRoastSong, Target: "bob"},
		},
		{
			name: "chat",
			msg:  Message{Text: "BABY, how are you?", Actor: user},
			want: Intent{Kind: KindChat, UserID: "2002", Prompt: "how are you?"},
		},
		{
			name: "bare wake word uses greeting",
			msg:  Message{Text: "baby!!", Actor: user},
			want: Intent{Kind: KindChat, UserID: "2002", Prompt: DefaultGreeting},
		},
		{
			name: "non privileged command",
			msg:  Message{Text: "!ban bob", Actor: user},
			want: Intent{Kind: KindUnrecognizedPrivilegedCommand, ActorName: "user2", Origin: OriginCommand},
		},
		{
			name: "privileged command is ignored",
			msg:  Message{Text: "!ban bob", Actor: admin},
			want: Intent{Kind: KindIgnore},
		},
		{
			name: "unprefixed chit chat",
			msg:  Message{Text: "hello everyone", Actor: user},
			want: Intent{Kind: KindIgnore},
		},
		{
			name: "bot authored",
			msg:  Message{Text: "baby hi", Actor: Actor{ID: "42", DisplayName: "otherbot", Bot: true}},
			want: Intent{Kind: KindIgnore},
		},
	}
	for _, tc := range cases {
		got := Classify(tc.msg, isAdmin)
		if got != tc.want {
			t.Fatalf("%s: Classify() = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	isAdmin := privilegedIDs(admin.ID)
	msg := Message{Text: "baby roast song @bob", Actor: admin, Mentions: []Actor{bob}}
	first := Classify(msg, isAdmin)
	for i := 0; i < 50; i++ {
		if got := Classify(msg, isAdmin); got != first {
			t.Fatalf("Classify() run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestClassifyNonPrivilegedNeverRoasts(t *testing.T) {
	isAdmin := privilegedIDs(admin.ID)
	for _, text := range []string{"baby roast @bob", "baby roast song @bob", "baby mazak @bob", "baby roast"} {
		got := Classify(Message{Text: text, Actor: user, Mentions: []Actor{bob}}, isAdmin)
		if got.Kind != KindSelfRoastDeflection {
			t.Fatalf("Classify(%q) kind = %q, want %q", text, got.Kind, KindSelfRoastDeflection)
		}
	}
}

func TestClassifyCommandNeverReachesChat(t *testing.T) {
	isAdmin := privilegedIDs(admin.ID)
	for _, text := range []string{"!ban bob", "!baby hi", "!", "!kick"} {
		got := Classify(Message{Text: text, Actor: user}, isAdmin)
		if got.Kind == KindChat {
			t.Fatalf("Classify(%q) reached chat", text)
		}
	}
}

func TestClassifyNilPrivilegeFuncDenies(t *testing.T) {
	got := Classify(Message{Text: "baby roast @bob", Actor: admin, Mentions: []Actor{bob}}, nil)
	if got.Kind != KindSelfRoastDeflection {
		t.Fatalf("kind = %q, want %q", got.Kind, KindSelfRoastDeflection)
	}
}

func TestStripWake(t *testing.T) {
	cases := map[string]string{
		"BABY, hi":          "hi",
		"baby hi":           "hi",
		"hi":                "hi",
		"  baby:- tell me ": "tell me",
		"baby":              "",
		"babyface hi":       "babyface hi",
		"hi baby":           "hi baby",
		"Baby baby hi":      "baby hi",
	}
	for in, want := range cases {
		if got := StripWake(in); got != want {
			t.Fatalf("StripWake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripWakeIdempotent(t *testing.T) {
	for _, in := range []string{"BABY, hi", "baby hi", "hello there", "baby... kya haal hai"} {
		once := StripWake(in)
		if twice := StripWake(once); twice != once {
			t.Fatalf("StripWake(StripWake(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestReplies(t *testing.T) {
	if (Intent{Kind: KindJoinVoice}).Replies() {
		t.Fatalf("join should not require a reply")
	}
	if !(Intent{Kind: KindChat}).Replies() {
		t.Fatalf("chat should require a reply")
	}
}
