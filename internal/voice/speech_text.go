package voice

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxSpeechRunes caps how much of a reply is read aloud.
const MaxSpeechRunes = 480

type speechRule struct {
	pattern *regexp.Regexp
	repl    string
}

// Applied in order; code blocks go before inline code, links before bare URLs.
var speechRules = []speechRule{
	{regexp.MustCompile("(?s)```.*?```"), " "},
	{regexp.MustCompile("`[^`]*`"), " "},
	{regexp.MustCompile(`\|\|(.+?)\|\|`), "$1"},
	{regexp.MustCompile(`\[(.*?)\]\((.*?)\)`), "$1"},
	{regexp.MustCompile(`https?://\S+`), " "},
	{regexp.MustCompile(`<a?:\w+:\d+>`), " "},
	{regexp.MustCompile(`<(?:@[!&]?|#)\d+>`), " "},
	{regexp.MustCompile(`<t:\d+(?::[a-zA-Z])?>`), " "},
}

// SanitizeSpeechText turns a chat reply into plain text for synthesis: Discord
// markup, markdown and emoji are removed, whitespace is collapsed and long
// replies are cut at a sentence boundary.
func SanitizeSpeechText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, rule := range speechRules {
		raw = rule.pattern.ReplaceAllString(raw, rule.repl)
	}
	return truncateSpeech(collapseSpeech(raw), MaxSpeechRunes)
}

func collapseSpeech(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSpace := false
	for _, r := range raw {
		switch classifySpeechRune(r) {
		case runeKeep:
			if pendingSpace && b.Len() > 0 && !strings.ContainsRune(".,!?:;)", r) {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case runeSpace:
			pendingSpace = true
		}
	}
	return b.String()
}

type speechRune int

const (
	runeDrop speechRune = iota
	runeSpace
	runeKeep
)

func classifySpeechRune(r rune) speechRune {
	switch {
	case r == '\u200d' || r == '\ufe0f' || r == '\u20e3':
		return runeDrop
	case unicode.IsSpace(r):
		return runeSpace
	case unicode.IsControl(r):
		return runeDrop
	case unicode.In(r, unicode.So, unicode.Sm, unicode.Sk):
		// emoji and symbols read badly
		return runeDrop
	case strings.ContainsRune(".,!?:;'\"-()", r):
		return runeKeep
	case unicode.IsPunct(r):
		return runeSpace
	default:
		return runeKeep
	}
}

func truncateSpeech(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	cut := runes[:limit]
	for i := len(cut) - 1; i >= limit/2; i-- {
		switch cut[i] {
		case '.', '!', '?':
			return string(cut[:i+1])
		}
	}
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' {
			return string(cut[:i])
		}
	}
	return string(cut)
}
