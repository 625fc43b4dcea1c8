package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	bracketed   = regexp.MustCompile(`[<\[][^>\]]*[>\]]`)
	parenthetic = regexp.MustCompile(`\(([^)]+?)\)`)
	fillers     = regexp.MustCompile(`\b(hmm|mm|mhm|mmm|uh|um)\b`)
	spacedApos  = regexp.MustCompile(`\s+'`)
	digitComma  = regexp.MustCompile(`(\d),(\d)`)
	stopPeriod  = regexp.MustCompile(`\.([^0-9]|$)`)
	danglingCur = regexp.MustCompile(`[.$¢€£]([^0-9])`)
	danglingPct = regexp.MustCompile(`%([^0-9]|$)`)
	anySpace    = regexp.MustCompile(`\s+`)
)

// englishReplacers expand colloquial forms, titles, and clitic suffixes.
// These run on lowercased text, in order.
var englishReplacers = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\bwon't\b`), "will not"},
	{regexp.MustCompile(`\bcan't\b`), "can not"},
	{regexp.MustCompile(`\blet's\b`), "let us"},
	{regexp.MustCompile(`\bain't\b`), "aint"},
	{regexp.MustCompile(`\by'all\b`), "you all"},
	{regexp.MustCompile(`\bwanna\b`), "want to"},
	{regexp.MustCompile(`\bgotta\b`), "got to"},
	{regexp.MustCompile(`\bgonna\b`), "going to"},
	{regexp.MustCompile(`\bi'ma\b`), "i am going to"},
	{regexp.MustCompile(`\bimma\b`), "i am going to"},
	{regexp.MustCompile(`\bwoulda\b`), "would have"},
	{regexp.MustCompile(`\bcoulda\b`), "could have"},
	{regexp.MustCompile(`\bshoulda\b`), "should have"},
	{regexp.MustCompile(`\bma'am\b`), "madam"},
	{regexp.MustCompile(`\bmr\b`), "mister "},
	{regexp.MustCompile(`\bmrs\b`), "missus "},
	{regexp.MustCompile(`\bst\b`), "saint "},
	{regexp.MustCompile(`\bdr\b`), "doctor "},
	{regexp.MustCompile(`\bprof\b`), "professor "},
	{regexp.MustCompile(`\bcapt\b`), "captain "},
	{regexp.MustCompile(`\bgov\b`), "governor "},
	{regexp.MustCompile(`\bald\b`), "alderman "},
	{regexp.MustCompile(`\bgen\b`), "general "},
	{regexp.MustCompile(`\bsen\b`), "senator "},
	{regexp.MustCompile(`\brep\b`), "representative "},
	{regexp.MustCompile(`\bpres\b`), "president "},
	{regexp.MustCompile(`\brev\b`), "reverend "},
	{regexp.MustCompile(`\bhon\b`), "honorable "},
	{regexp.MustCompile(`\basst\b`), "assistant "},
	{regexp.MustCompile(`\bassoc\b`), "associate "},
	{regexp.MustCompile(`\blt\b`), "lieutenant "},
	{regexp.MustCompile(`\bcol\b`), "colonel "},
	{regexp.MustCompile(`\bjr\b`), "junior "},
	{regexp.MustCompile(`\bsr\b`), "senior "},
	{regexp.MustCompile(`\besq\b`), "esquire "},
	{regexp.MustCompile(`n't\b`), " not"},
	{regexp.MustCompile(`'re\b`), " are"},
	{regexp.MustCompile(`'s\b`), " is"},
	{regexp.MustCompile(`'d\b`), " would"},
	{regexp.MustCompile(`'ll\b`), " will"},
	{regexp.MustCompile(`'t\b`), " not"},
	{regexp.MustCompile(`'ve\b`), " have"},
	{regexp.MustCompile(`'m\b`), " am"},
}

// britishSpellings maps common British spellings to their American
// forms, applied word-by-word after symbol removal.
var britishSpellings = map[string]string{
	"analyse":      "analyze",
	"analysed":     "analyzed",
	"apologise":    "apologize",
	"behaviour":    "behavior",
	"cancelled":    "canceled",
	"catalogue":    "catalog",
	"centre":       "center",
	"colour":       "color",
	"colours":      "colors",
	"defence":      "defense",
	"dialogue":     "dialog",
	"favour":       "favor",
	"favourite":    "favorite",
	"flavour":      "flavor",
	"grey":         "gray",
	"honour":       "honor",
	"humour":       "humor",
	"jewellery":    "jewelry",
	"labour":       "labor",
	"licence":      "license",
	"litre":        "liter",
	"metre":        "meter",
	"neighbour":    "neighbor",
	"neighbours":   "neighbors",
	"offence":      "offense",
	"organisation": "organization",
	"organise":     "organize",
	"organised":    "organized",
	"practise":     "practice",
	"programme":    "program",
	"realise":      "realize",
	"realised":     "realized",
	"recognise":    "recognize",
	"recognised":   "recognized",
	"theatre":      "theater",
	"travelled":    "traveled",
	"travelling":   "traveling",
}

// English applies the ASR-style English normalization pass: lowercase,
// drop bracketed and parenthetic asides and filler words, expand clitic
// suffixes and spoken abbreviations, strip symbols and diacritics while
// keeping numeric punctuation, and fold British spellings.
func English(s string) string {
	s = strings.ToLower(s)

	s = bracketed.ReplaceAllString(s, "")
	s = parenthetic.ReplaceAllString(s, "")
	s = fillers.ReplaceAllString(s, "")
	s = spacedApos.ReplaceAllString(s, "'")

	for _, r := range englishReplacers {
		s = r.pattern.ReplaceAllString(s, r.repl)
	}

	s = digitComma.ReplaceAllString(s, "$1$2")
	s = stopPeriod.ReplaceAllString(s, " $1")
	s = stripSymbolsAndDiacritics(s, ".%$¢€£")

	words := strings.Fields(s)
	for i, w := range words {
		if american, ok := britishSpellings[w]; ok {
			words[i] = american
		}
	}
	s = strings.Join(words, " ")

	s = danglingCur.ReplaceAllString(s, " $1")
	s = danglingPct.ReplaceAllString(s, " $1")
	s = anySpace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// stripSymbolsAndDiacritics NFKD-decomposes s, drops combining marks,
// and replaces remaining marks, symbols, and punctuation with spaces.
// Runes listed in keep survive untouched.
func stripSymbolsAndDiacritics(s, keep string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		switch {
		case strings.ContainsRune(keep, r):
			b.WriteRune(r)
		case unicode.Is(unicode.Mn, r):
			// combining mark: drop
		case unicode.In(r, unicode.M, unicode.S, unicode.P):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
