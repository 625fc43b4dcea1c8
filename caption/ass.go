package caption

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ASS timestamp: H:MM:SS.cc (centiseconds).
var assTime = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)

// Inline override tags such as {\i1} carry styling only.
var assOverride = regexp.MustCompile(`\{[^}]*\}`)

// ParseASS parses Advanced SubStation Alpha (and SSA) captions. Only
// the [Events] section is read; field order follows the section's
// Format line. Comment lines and cues with invalid timestamps are
// skipped, and override tags are stripped from the text.
func ParseASS(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []Event
	inEvents := false
	var fields []string
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = stripBOM(line)
			first = false
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			inEvents = strings.EqualFold(line, "[Events]")
		case !inEvents || line == "":
		case strings.HasPrefix(line, "Format:"):
			fields = splitASSFields(strings.TrimPrefix(line, "Format:"), 0)
		case strings.HasPrefix(line, "Dialogue:"):
			if ev, ok := assDialogue(strings.TrimPrefix(line, "Dialogue:"), fields); ok {
				events = append(events, ev)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// splitASSFields splits a comma-separated value list. With n > 0 the
// split stops after n fields so commas inside the trailing Text field
// survive.
func splitASSFields(s string, n int) []string {
	var parts []string
	if n > 0 {
		parts = strings.SplitN(s, ",", n)
	} else {
		parts = strings.Split(s, ",")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func assDialogue(line string, format []string) (Event, bool) {
	if len(format) == 0 {
		// Default V4+ field order.
		format = []string{"Layer", "Start", "End", "Style", "Name", "MarginL", "MarginR", "MarginV", "Effect", "Text"}
	}
	values := splitASSFields(line, len(format))
	if len(values) < len(format) {
		return Event{}, false
	}

	var ev Event
	var startOK, endOK bool
	for i, name := range format {
		switch name {
		case "Start":
			ev.StartMS, startOK = parseASSTime(values[i])
		case "End":
			ev.EndMS, endOK = parseASSTime(values[i])
		case "Name":
			ev.Name = values[i]
		case "Text":
			// Text is the last field; SplitN keeps its commas.
			ev.Text = assOverride.ReplaceAllString(values[i], "")
		}
	}
	if !startOK || !endOK {
		return Event{}, false
	}
	return ev, true
}

func parseASSTime(s string) (int64, bool) {
	m := assTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.ParseInt(m[1], 10, 64)
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	centis, _ := strconv.ParseInt(m[4], 10, 64)
	return ((hours*60+minutes)*60+seconds)*1000 + centis*10, true
}
