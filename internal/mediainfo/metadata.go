package mediainfo

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

const (
	metadataHeader = "Metadata:"
	sideDataHeader = "Side data:"
	streamMarker   = "Stream"
	atLeastMarker  = "At least"
	durationMarker = "Duration"
)

// metadataAfter parses the block that immediately follows a stream line.
// The first non-blank text after offset must be the "Metadata:" header, and
// the block must be closed by a line starting with one of terminators;
// an unterminated block is ignored.
func metadataAfter(text string, offset int, terminators ...string) (*Metadata, bool) {
	rest := text[offset:]
	if !strings.HasPrefix(strings.TrimSpace(rest), metadataHeader) {
		return nil, false
	}
	lines := strings.Split(rest, "\n")
	header := slices.IndexFunc(lines, func(line string) bool {
		return strings.TrimSpace(line) != ""
	})
	return parseBlock(lines[header+1:], terminators)
}

// containerMetadata parses the input-level block that starts at the first
// "Metadata:" header and runs until the "Duration" line. Pure audio files
// carry their tags there.
func containerMetadata(text string) (*Metadata, bool) {
	idx := strings.Index(text, metadataHeader)
	if idx < 0 {
		return nil, false
	}
	lines := strings.Split(text[idx+len(metadataHeader):], "\n")
	return parseBlock(lines[1:], []string{durationMarker})
}

// parseBlock collects "tag : value" lines until a terminator line. Tags are
// lowercase letters and underscores; a repeated tag keeps its first position
// and takes the last value. Lines after a "Side data:" header belong to the
// stream's side data, not its tags.
func parseBlock(lines []string, terminators []string) (*Metadata, bool) {
	meta := NewMetadata()
	collecting := true
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		terminated := lo.SomeBy(terminators, func(t string) bool {
			return strings.HasPrefix(trimmed, t)
		})
		if terminated {
			return meta, true
		}
		if !collecting {
			continue
		}
		if strings.HasPrefix(trimmed, sideDataHeader) {
			collecting = false
			continue
		}
		if m := metadataLinePattern.FindStringSubmatch(line); m != nil {
			meta.Set(m[1], m[2])
		}
	}
	return nil, false
}
