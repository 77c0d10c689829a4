package policy

import (
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern    = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	secretPattern  = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9_\-]{16,}|[MN][A-Za-z\d]{23,25}\.[\w-]{6}\.[\w-]{27,})\b`)
	mentionPattern = regexp.MustCompile(`<(?:@[!&]?|#)\d+>`)
)

// RedactPII masks email, card, phone and API-token patterns. Discord mention
// markup is kept verbatim since snowflake ids look like card numbers.
func RedactPII(input string) (redacted string, changed bool) {
	mentions := mentionPattern.FindAllStringIndex(input, -1)
	if len(mentions) == 0 {
		return redactSegment(input)
	}

	var b strings.Builder
	last := 0
	for _, loc := range mentions {
		seg, segChanged := redactSegment(input[last:loc[0]])
		changed = changed || segChanged
		b.WriteString(seg)
		b.WriteString(input[loc[0]:loc[1]])
		last = loc[1]
	}
	seg, segChanged := redactSegment(input[last:])
	b.WriteString(seg)
	return b.String(), changed || segChanged
}

func redactSegment(input string) (string, bool) {
	out := input
	changed := false
	for _, r := range []struct {
		re   *regexp.Regexp
		mask string
	}{
		{secretPattern, "[REDACTED_SECRET]"},
		{emailPattern, "[REDACTED_EMAIL]"},
		// Cards before phones so card numbers are not classified as phones.
		{cardPattern, "[REDACTED_CARD]"},
		{phonePattern, "[REDACTED_PHONE]"},
	} {
		next := r.re.ReplaceAllString(out, r.mask)
		changed = changed || next != out
		out = next
	}
	return out, changed
}
