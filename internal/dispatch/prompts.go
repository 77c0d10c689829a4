package dispatch

import (
	"fmt"

	"github.com/antoniostano/babybot/internal/generation"
	"github.com/antoniostano/babybot/internal/intent"
	"github.com/antoniostano/babybot/internal/memory"
)

const personaPrompt = "Tum ek female AI ho jiska naam 'Baby' hai. Tum insaan jaisi lagti ho, " +
	"caring, thodi flirty, playful aur kabhi kabhi romantic/emotional. " +
	"Natural, concise aur warm tone use karo. Repeat words avoid karo. Kabhi kabhi halki hesitation " +
	"('umm...', 'hmm...', 'soch rahi hoon...') theek hai. Hindi+English (Hinglish) comfortable ho."

const (
	romanticSongPrompt = "Ek chhota romantic cute song banao jo girlfriend apne boyfriend ko gati hai. " +
		"4-6 lines, filmy feel, Hinglish lyrics."
	roastSongPromptFormat = "Ek funny roast song banao %s ke liye. 4-6 lines. " +
		"Hinglish, catchy rhymes, gaane ke style me."
	roastSystemFormat = "Tum 'Baby' ho, ek flirty, thodi savage but friendly female AI. " +
		"Abhi tumhe %s karna hai. Tone me thoda pyaar + masti rakho, zyada harsh nahi."
)

// Fixed replies for voice control and degraded generation.
const (
	ReplyJoined       = "✅ Baby aa gayi VC me ❤️"
	ReplyJoinNoVoice  = "❌ Pehle voice channel join karo."
	ReplyJoinFailed   = "❌ VC join nahi ho paya, dobara try karo."
	ReplyLeft         = "👋 Baby nikal gayi VC se."
	ReplyLeaveFailed  = "❌ VC se nikal nahi paayi."
	PlaceholderNoAI   = "(AI client init failed. Check OpenAI SDK/KEY.)"
	PlaceholderFailed = "(Baby abhi soch nahi paa rahi... thodi der baad try karo.)"

	relaySpeechPrefix = "Command forward kar rahi hoon: "
	singingCue        = "(singing) "
)

func chatRequest(history []memory.Exchange, prompt string) generation.Request {
	msgs := make([]generation.Message, 0, len(history)*2+1)
	for _, turn := range history {
		msgs = append(msgs,
			generation.Message{Role: generation.RoleUser, Content: turn.User},
			generation.Message{Role: generation.RoleAssistant, Content: turn.Bot},
		)
	}
	msgs = append(msgs, generation.Message{Role: generation.RoleUser, Content: prompt})
	return generation.Request{
		System:           personaPrompt,
		Messages:         msgs,
		Temperature:      1.1,
		MaxTokens:        280,
		PresencePenalty:  0.7,
		FrequencyPenalty: 0.9,
	}
}

func roastRequest(target string, style intent.Style) generation.Request {
	tone := "playful mazaak"
	if style == intent.StyleRoast {
		tone = "savage aur funny roast"
	}
	return generation.Request{
		System:           fmt.Sprintf(roastSystemFormat, tone),
		Messages:         []generation.Message{{Role: generation.RoleUser, Content: "Target: " + target}},
		Temperature:      1.25,
		MaxTokens:        180,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.7,
	}
}

func songRequest(roastTarget string) generation.Request {
	prompt := romanticSongPrompt
	if roastTarget != "" {
		prompt = fmt.Sprintf(roastSongPromptFormat, roastTarget)
	}
	return generation.Request{
		System:           personaPrompt,
		Messages:         []generation.Message{{Role: generation.RoleUser, Content: prompt}},
		Temperature:      1.2,
		MaxTokens:        160,
		PresencePenalty:  0.5,
		FrequencyPenalty: 0.8,
	}
}

func deflectionMarker(origin intent.Origin) string {
	switch origin {
	case intent.OriginSongRequest:
		return "🙃"
	case intent.OriginCommand:
		return "😅"
	default:
		return "😜"
	}
}
