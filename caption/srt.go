package caption

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// SRT timing line: 00:01:02,345 --> 00:01:04,000. Some files use a
// period for the millisecond separator.
var srtTiming = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d+):(\d{2}):(\d{2})[,.](\d{1,3})`)

// ParseSRT parses SubRip captions. Cue text lines are joined with the
// literal \N marker. Blocks without a valid timing line are skipped.
func ParseSRT(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []Event
	var block []string
	flush := func() {
		if ev, ok := srtBlock(block); ok {
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

func srtBlock(block []string) (Event, bool) {
	// Skip an optional numeric index line, then require a timing line.
	i := 0
	if i < len(block) {
		if _, err := strconv.Atoi(strings.TrimSpace(block[i])); err == nil {
			i++
		}
	}
	if i >= len(block) {
		return Event{}, false
	}
	m := srtTiming.FindStringSubmatch(strings.TrimSpace(block[i]))
	if m == nil {
		return Event{}, false
	}
	start := clockMS(m[1], m[2], m[3], m[4])
	end := clockMS(m[5], m[6], m[7], m[8])
	text := strings.Join(block[i+1:], `\N`)
	return Event{StartMS: start, EndMS: end, Text: text}, true
}

// clockMS converts hours, minutes, seconds, and a millisecond fraction
// of up to three digits into milliseconds.
func clockMS(h, m, s, frac string) int64 {
	hours, _ := strconv.ParseInt(h, 10, 64)
	minutes, _ := strconv.ParseInt(m, 10, 64)
	seconds, _ := strconv.ParseInt(s, 10, 64)
	for len(frac) < 3 {
		frac += "0"
	}
	millis, _ := strconv.ParseInt(frac, 10, 64)
	return ((hours*60+minutes)*60+seconds)*1000 + millis
}
