// Package normalize turns raw caption text into comparable form: unicode
// folding, HTML entity decoding, bracketed event-marker stripping,
// English contraction expansion, and a language-specific token pass.
//
// Every function is total: malformed input degrades to best-effort
// output, never an error.
package normalize

import (
	"html"
	"regexp"
	"strings"
)

// quoteFold maps curly and typographic quote variants to their ASCII
// equivalents.
var quoteFold = map[rune]rune{
	'‘': '\'', // left single quotation mark
	'’': '\'', // right single quotation mark
	'‚': '\'', // single low-9 quotation mark
	'‛': '\'', // single high-reversed-9 quotation mark
	'“': '"',  // left double quotation mark
	'”': '"',  // right double quotation mark
	'„': '"',  // double low-9 quotation mark
	'‟': '"',  // double high-reversed-9 quotation mark
	'′': '\'', // prime
	'″': '"',  // double prime
}

// FoldUnicode maps fullwidth forms (U+FF01..U+FF5E) to halfwidth ASCII,
// the ideographic space to a plain space, and smart quotes to ASCII
// quotes. All other runes pass through unchanged.
func FoldUnicode(text string) string {
	return strings.Map(func(r rune) rune {
		if folded, ok := quoteFold[r]; ok {
			return folded
		}
		if r >= 0xFF01 && r <= 0xFF5E {
			return r - 0xFEE0
		}
		if r == 0x3000 {
			return ' '
		}
		return r
	}, text)
}

// DecodeEntities decodes HTML entities such as &gt; and &amp;.
func DecodeEntities(text string) string {
	return html.UnescapeString(text)
}

// Clean prepares one event's raw text for comparison: entity decoding,
// unicode folding, literal line-break markers and ellipses replaced by
// spaces, surrounding whitespace trimmed.
func Clean(text string) string {
	text = DecodeEntities(text)
	text = FoldUnicode(text)
	text = strings.ReplaceAll(text, `\N`, " ")
	text = strings.ReplaceAll(text, `\n`, " ")
	text = strings.ReplaceAll(text, "...", " ")
	return strings.TrimSpace(text)
}

// Event markers like [Laughter] or [Applause]. Upstream caption
// splitting can break a marker across two events, leaving an
// unterminated "[speaking In" at the end of one and a trailing
// "Italian ]" at the start of the next.
var (
	eventComplete = regexp.MustCompile(`\[[^\]]+\]`)
	eventOpen     = regexp.MustCompile(`\[[^\]]*$`)
	eventTail     = regexp.MustCompile(`^[\p{L}\p{N}_]+\s*\]$`)
)

// RemoveEvents strips bracketed event markers, including the two halves
// of a marker split across events, and trims the remainder.
func RemoveEvents(text string) string {
	text = eventComplete.ReplaceAllString(text, "")
	text = eventOpen.ReplaceAllString(text, "")
	text = eventTail.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// IsEventOnly reports whether text carries nothing but event markers.
func IsEventOnly(text string) bool {
	return RemoveEvents(text) == ""
}

// Contraction expansion rules, applied in order. Negative and
// irregular forms come first so the generic suffix rules cannot
// truncate them.
var contractions = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)\bwon't\b`), "will not"},
	{regexp.MustCompile(`(?i)\bcan't\b`), "cannot"},
	{regexp.MustCompile(`(?i)\bshan't\b`), "shall not"},
	{regexp.MustCompile(`(?i)\bn't\b`), " not"},
	{regexp.MustCompile(`(?i)\blet's\b`), "let us"},
	{regexp.MustCompile(`(?i)\b([\p{L}\p{N}_]+)'re\b`), "$1 are"},
	{regexp.MustCompile(`(?i)\b([\p{L}\p{N}_]+)'ve\b`), "$1 have"},
	{regexp.MustCompile(`(?i)\b([\p{L}\p{N}_]+)'ll\b`), "$1 will"},
	{regexp.MustCompile(`(?i)\b([\p{L}\p{N}_]+)'d\b`), "$1 would"},
	{regexp.MustCompile(`(?i)\bI'm\b`), "I am"},
	{regexp.MustCompile(`(?i)\b([\p{L}\p{N}_]+)'s\b`), "$1 is"},
}

// ExpandContractions rewrites English contractions to their two-word
// forms, case-insensitively.
func ExpandContractions(text string) string {
	for _, c := range contractions {
		text = c.pattern.ReplaceAllString(text, c.repl)
	}
	return text
}

// Normalizer applies the language-specific final pass. It carries no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	language string
}

// New returns a normalizer for the given language code. "en" selects
// the English ASR-style pass; everything else uses the multilingual
// tokenizer.
func New(language string) *Normalizer {
	return &Normalizer{language: language}
}

// Language returns the configured language code.
func (n *Normalizer) Language() string {
	return n.language
}

// Normalize runs the language pass over already cleaned, contraction
// expanded text and returns a space-joined token string.
func (n *Normalizer) Normalize(text string) string {
	if n.language == "en" {
		return strings.ReplaceAll(English(text), "chatgpt", "chat gpt")
	}
	return Multilingual(text)
}

// Sentence normalizes one event's text for sentence-level comparison:
// unicode folding, contraction expansion, then the language pass.
func (n *Normalizer) Sentence(text string) string {
	return n.Normalize(ExpandContractions(FoldUnicode(text)))
}
