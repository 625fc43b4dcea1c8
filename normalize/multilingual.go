package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scripts tokenized one character at a time. Everything else splits on
// whitespace and punctuation.
var cjkScripts = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
}

func isCJK(r rune) bool {
	return unicode.In(r, cjkScripts...)
}

// Tokenize splits text for language-agnostic comparison: each CJK
// character is its own token, punctuation and symbols are split off as
// single-rune tokens, and remaining runs form word tokens.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isCJK(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func isPunctToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// Multilingual tokenizes text, drops pure punctuation tokens, joins the
// rest with single spaces, and lowercases the result.
func Multilingual(text string) string {
	tokens := Tokenize(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isPunctToken(tok) {
			kept = append(kept, tok)
		}
	}
	return cases.Lower(language.Und).String(strings.Join(kept, " "))
}
