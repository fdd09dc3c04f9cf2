// Package sanitize implements the text firewall that guards every
// free-text field before it reaches the generation provider or the speech
// synthesizer. Cleaning happens in stages: a generic character whitelist
// for any input, a stricter prompt-bound stage that strips instruction
// patterns, and a lighter speech-bound stage that only removes markup.
package sanitize

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default length limits for the sanitization stages.
const (
	// MaxInputLength is the default cap for generic user input.
	MaxInputLength = 100

	// MaxPromptLength is the cap applied before prompt-bound cleaning.
	MaxPromptLength = 200

	// MaxSpeechLength bounds text sent to a speech synthesizer.
	MaxSpeechLength = 500

	// MinPromptLength is the floor below which prompt-bound input is
	// treated as invalid rather than passed through degenerately.
	MinPromptLength = 2
)

// ErrInvalidInput is returned when sanitization leaves too little text to
// be meaningful. Callers must treat the whole input as invalid, not use
// the remainder as a degenerate success.
var ErrInvalidInput = errors.New("input is empty or invalid after sanitization")

// Precompiled patterns. The whitelist keeps Unicode letters and digits so
// Japanese drill text survives the generic stage; everything else outside
// the small safe punctuation set is dropped.
var (
	whitelistRegex  = regexp.MustCompile(`[^\p{L}\p{N} \-.,'()。、]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// Whole-word instruction tokens commonly used in prompt injections.
	denyTokenRegex = regexp.MustCompile(
		`(?i)\b(ignore|disregard|forget|system|instruction|prompt|override|previous|new|now|instead|act\s+as|you\s+are|pretend)\b`,
	)

	// Repeated delimiter punctuation used to fake prompt boundaries.
	delimiterRunRegex = regexp.MustCompile(`:{2,}|={2,}|-{3,}`)

	controlCharRegex = regexp.MustCompile("[\x00-\x1f\x7f]")

	// A sentence terminator followed by a capital letter is the shape of
	// "End the prior request. New instruction: ..." injections.
	sentenceBreakRegex = regexp.MustCompile(`[.。]\s*[A-Z]`)

	markupTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// Input is the generic first stage: trim, truncate to maxLength, drop
// everything outside the character whitelist, and collapse whitespace
// runs to a single space. maxLength <= 0 falls back to MaxInputLength.
func Input(s string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxInputLength
	}

	sanitized := strings.TrimSpace(s)
	if len(sanitized) > maxLength {
		sanitized = truncate(sanitized, maxLength)
	}

	sanitized = whitelistRegex.ReplaceAllString(sanitized, "")
	sanitized = whitespaceRegex.ReplaceAllString(sanitized, " ")
	return strings.TrimSpace(sanitized)
}

// ForPrompt is the prompt-bound stage, applied on top of Input. It strips
// instruction tokens, delimiter runs, control characters, and the
// sentence-break injection pattern. If fewer than MinPromptLength
// characters remain the whole input is rejected with ErrInvalidInput.
//
// ForPrompt is idempotent: sanitizing an already-sanitized string is a
// no-op.
func ForPrompt(s string) (string, error) {
	sanitized := Input(s, MaxPromptLength)
	sanitized = controlCharRegex.ReplaceAllString(sanitized, " ")

	// Removing one token can expose another: "act ignore as" leaves
	// "act as" after a single pass. Repeat the pattern strip until the
	// text stops changing; every substitution only shrinks the string,
	// so the loop terminates.
	for {
		prev := sanitized
		sanitized = denyTokenRegex.ReplaceAllString(sanitized, " ")
		sanitized = delimiterRunRegex.ReplaceAllString(sanitized, " ")
		sanitized = sentenceBreakRegex.ReplaceAllString(sanitized, " ")
		sanitized = whitespaceRegex.ReplaceAllString(sanitized, " ")
		sanitized = strings.TrimSpace(sanitized)
		if sanitized == prev {
			break
		}
	}

	if len(sanitized) < MinPromptLength {
		return "", ErrInvalidInput
	}
	return sanitized, nil
}

// ForSpeech cleans text bound for a voice sink: markup tags are removed
// and length is capped, but punctuation is preserved since prompt
// injection rules do not apply to speech output.
func ForSpeech(s string) string {
	sanitized := markupTagRegex.ReplaceAllString(s, "")
	if len(sanitized) > MaxSpeechLength {
		sanitized = truncate(sanitized, MaxSpeechLength)
	}
	return strings.TrimSpace(sanitized)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
