package encoder

import (
	"strings"
	"sync"
)

// ParseLogLevel extracts the log level from an ffmpeg stderr line. With
// -loglevel level+info ffmpeg prefixes lines with "[info] message", or
// "[component @ 0x...] [level] message" for component logs. The component
// tag is preserved in the returned message, the level tag is stripped.
func ParseLogLevel(line string) (level, msg string) {
	level, rest, ok := splitLevelTag(line)
	if ok {
		return level, rest
	}

	// Component prefix: keep "[component @ 0x...] ", classify the rest
	if end := strings.Index(line, "] "); end != -1 && strings.HasPrefix(line, "[") {
		component := line[:end+2]
		if level, rest, ok := splitLevelTag(line[end+2:]); ok {
			return level, component + rest
		}
	}

	return "info", line
}

// splitLevelTag splits a leading "[level] " tag off the line.
func splitLevelTag(line string) (level, rest string, ok bool) {
	if len(line) < 3 || line[0] != '[' {
		return "", "", false
	}
	end := strings.Index(line, "] ")
	if end == -1 {
		return "", "", false
	}
	switch tag := line[1:end]; tag {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return tag, line[end+2:], true
	}
	return "", "", false
}

// tailBuffer keeps the last N stderr lines for failure diagnostics.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
