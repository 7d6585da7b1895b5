// Package repair recovers structured replies from completion output that may
// be wrapped in prose, markdown fences, or contain illegal comments.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/swellyo/matching-platform/internal/model"
)

// ParsedReply is the normalized form of a raw completion.
type ParsedReply struct {
	// Message is the conversational text, guaranteed free of fences and
	// structured-data fragments.
	Message string

	// Finished reports whether the dialogue reached its terminal state.
	Finished bool

	// Trip is the structured payload, nil unless the reply carried one.
	Trip *model.TripRequest

	// Structured reports whether a JSON object was successfully decoded.
	// When false the reply was handled as plain text.
	Structured bool
}

// wireReply tolerates both the current field names and the legacy wire names
// used by earlier backend versions.
type wireReply struct {
	ReturnMessage string             `json:"return_message"`
	Message       string             `json:"message"`
	IsFinished    *bool              `json:"is_finished"`
	Finished      *bool              `json:"finished"`
	Data          *model.TripRequest `json:"data"`
	Trip          *model.TripRequest `json:"trip"`
}

var fenceRe = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\\s*(.*?)```")

// completionPhrases are fragments that signal the model believes the session
// is complete even when the structured flag went missing.
var completionPhrases = []string{
	"paints the full picture",
	"got everything i need",
	"that's everything i need",
	"ready to find your matches",
	"ready to match you",
	"session is complete",
	"we've got the full picture",
}

// Parse normalizes a raw completion. Steps are applied in order, stopping at
// the first successful decode: fenced-block extraction, comment stripping,
// outermost-object location, JSON decode. When no object can be decoded the
// text is classified heuristically instead.
func Parse(raw string) ParsedReply {
	candidate := strings.TrimSpace(raw)

	if m := fenceRe.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	candidate = stripComments(candidate)

	if obj, ok := outermostObject(candidate); ok {
		var wire wireReply
		if err := json.Unmarshal([]byte(obj), &wire); err == nil {
			return fromWire(raw, &wire)
		}
	}

	// No decodable object anywhere. A completion-phrase match is treated as
	// an implicit finished signal; the payload is reconstructed by the
	// caller from prior turns.
	plain := ScrubMessage(raw)
	return ParsedReply{
		Message:  plain,
		Finished: matchesCompletionPhrase(plain),
	}
}

func fromWire(raw string, wire *wireReply) ParsedReply {
	msg := wire.ReturnMessage
	if msg == "" {
		msg = wire.Message
	}
	if msg == "" {
		// Object carried no conversational text; salvage surrounding prose.
		msg = ScrubMessage(raw)
	} else {
		msg = ScrubMessage(msg)
	}

	finished := false
	if wire.IsFinished != nil {
		finished = *wire.IsFinished
	} else if wire.Finished != nil {
		finished = *wire.Finished
	}

	trip := wire.Data
	if trip == nil {
		trip = wire.Trip
	}
	if !finished && matchesCompletionPhrase(msg) {
		finished = true
	}

	return ParsedReply{
		Message:    msg,
		Finished:   finished,
		Trip:       trip,
		Structured: true,
	}
}

// ExtractObject runs the fence/comment/outermost-object pipeline and returns
// the candidate JSON object text without decoding it. Callers with their own
// wire shapes decode it themselves.
func ExtractObject(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	candidate = stripComments(candidate)
	return outermostObject(candidate)
}

// ScrubMessage removes fenced blocks and JSON blobs from conversational text
// so structured residue never reaches the user. Brace spans that are not
// valid JSON stay put; users do write {this} kind of thing.
func ScrubMessage(text string) string {
	text = fenceRe.ReplaceAllString(text, "")
	for {
		obj, ok := outermostObject(text)
		if !ok || !json.Valid([]byte(obj)) {
			break
		}
		text = strings.Replace(text, obj, "", 1)
	}
	return strings.TrimSpace(collapseBlankLines(text))
}

func matchesCompletionPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range completionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// outermostObject finds the first top-level {...} span, honoring JSON string
// literals so braces inside strings do not confuse the depth count.
func outermostObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// stripComments removes // line comments and /* */ block comments, which some
// completions illegally embed in JSON. String literals are left untouched.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			if i < len(text) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			i += 2
			for i+1 < len(text) && !(text[i] == '*' && text[i+1] == '/') {
				i++
			}
			i++ // skip the trailing '/'
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
