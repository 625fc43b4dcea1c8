package caption

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// WebVTT timing line. The hour part is optional.
var vttTiming = regexp.MustCompile(`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`)

// Voice span: <v Speaker>text. The speaker may carry class annotations
// like <v.loud Speaker>.
var vttVoice = regexp.MustCompile(`<v(?:\.[^ >]*)?\s+([^>]+)>`)

// Remaining inline tags such as <c>, <i>, </v>.
var vttTag = regexp.MustCompile(`</?[^>]+>`)

// ParseVTT parses WebVTT captions. Cue identifiers, NOTE and STYLE
// blocks, and cue settings after the timing line are ignored. A leading
// voice span becomes the event's speaker name and inline tags are
// stripped. Multi-line cue text is joined with the literal \N marker.
func ParseVTT(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []Event
	var block []string
	flush := func() {
		if ev, ok := vttBlock(block); ok {
			events = append(events, ev)
		}
		block = block[:0]
	}
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = stripBOM(line)
			first = false
			if strings.HasPrefix(line, "WEBVTT") {
				continue
			}
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func vttBlock(block []string) (Event, bool) {
	if len(block) == 0 {
		return Event{}, false
	}
	head := strings.TrimSpace(block[0])
	if strings.HasPrefix(head, "NOTE") || head == "STYLE" || head == "REGION" {
		return Event{}, false
	}

	// An optional cue identifier precedes the timing line.
	i := 0
	m := vttTiming.FindStringSubmatch(strings.TrimSpace(block[i]))
	if m == nil && len(block) > 1 {
		i = 1
		m = vttTiming.FindStringSubmatch(strings.TrimSpace(block[i]))
	}
	if m == nil {
		return Event{}, false
	}

	ev := Event{
		StartMS: vttMS(m[1], m[2], m[3], m[4]),
		EndMS:   vttMS(m[5], m[6], m[7], m[8]),
	}

	text := strings.Join(block[i+1:], `\N`)
	if voice := vttVoice.FindStringSubmatch(text); voice != nil {
		ev.Name = strings.TrimSpace(voice[1])
	}
	text = vttVoice.ReplaceAllString(text, "")
	ev.Text = vttTag.ReplaceAllString(text, "")
	return ev, true
}

func vttMS(h, m, s, frac string) int64 {
	var hours int64
	if h != "" {
		hours, _ = strconv.ParseInt(h, 10, 64)
	}
	minutes, _ := strconv.ParseInt(m, 10, 64)
	seconds, _ := strconv.ParseInt(s, 10, 64)
	millis, _ := strconv.ParseInt(frac, 10, 64)
	return ((hours*60+minutes)*60+seconds)*1000 + millis
}
