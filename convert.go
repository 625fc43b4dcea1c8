package capeval

import (
	"strings"

	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/normalize"
	"github.com/jamesainslie/go-capeval/timeline"
)

// Annotate converts caption events into a speaker annotation. An event
// carrying a speaker tag switches the current speaker; untagged events
// inherit it. Events whose cleaned text is nothing but bracketed markers
// are dropped when skipEvents. Events sharing an exact (start, end) span
// collapse last-writer-wins; overlap and zero-duration spans survive.
func Annotate(events []caption.Event, skipEvents bool) *timeline.Annotation {
	ann := timeline.NewAnnotation()
	speaker := ""
	for _, ev := range events {
		if skipEvents && normalize.IsEventOnly(normalize.Clean(ev.Text)) {
			continue
		}
		if ev.Name != "" {
			speaker = speakerTag(ev.Name)
		}
		ann.Upsert(timeline.Interval{Start: ev.Start(), End: ev.End()}, speaker)
	}
	return ann
}

// speakerTag folds a raw tag to halfwidth, strips trailing ":" and
// leading ">", and trims surrounding space.
func speakerTag(name string) string {
	s := normalize.FoldUnicode(name)
	s = strings.TrimRight(s, ":")
	s = strings.TrimLeft(s, ">")
	return strings.TrimSpace(s)
}

// Transcript renders the events as one normalized text stream for word
// error rate scoring. Events reduced to nothing by cleaning contribute
// nothing.
func Transcript(events []caption.Event, norm *normalize.Normalizer, skipEvents bool) string {
	var texts []string
	for _, ev := range events {
		text := normalize.Clean(ev.Text)
		if skipEvents {
			if normalize.IsEventOnly(text) {
				continue
			}
			text = normalize.RemoveEvents(text)
		}
		if text == "" {
			continue
		}
		texts = append(texts, norm.Normalize(normalize.ExpandContractions(text)))
	}
	return strings.Join(texts, " ")
}

// sentenceEvents pairs each retained event with its normalized sentence
// for the alignment diff. Empty sentences stay in place so sentence
// positions keep lining up with event times.
func sentenceEvents(events []caption.Event, norm *normalize.Normalizer, skipEvents bool) ([]caption.Event, []string) {
	var kept []caption.Event
	var sentences []string
	for _, ev := range events {
		text := ev.Text
		if skipEvents {
			if normalize.IsEventOnly(normalize.Clean(text)) {
				continue
			}
			text = normalize.RemoveEvents(text)
		}
		kept = append(kept, ev)
		sentences = append(sentences, norm.Sentence(text))
	}
	return kept, sentences
}
