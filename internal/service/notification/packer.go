package notification

import (
	"strings"

	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

const lineSeparator = "\n"

// PackSegments joins lines with newlines into segments of at most capacity
// characters, keeping line order. A line that alone exceeds capacity is cut
// to fit. Lengths are counted in runes.
func PackSegments(lines []string, capacity int) []string {
	if capacity <= 0 || len(lines) == 0 {
		return []string{}
	}

	segments := []string{}
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			segments = append(segments, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range lines {
		line = util.TruncateString(line, capacity)
		lineLen := util.RuneLen(line)

		needed := lineLen
		if currentLen > 0 {
			needed += len(lineSeparator)
		}
		if currentLen > 0 && currentLen+needed > capacity {
			flush()
			needed = lineLen
		}

		if currentLen > 0 {
			current.WriteString(lineSeparator)
		}
		current.WriteString(line)
		currentLen += needed
	}
	flush()

	return segments
}
