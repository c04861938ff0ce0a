package mediainfo

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Group 1 is the line from "Stream" on, group 2 the stream id, group 3
	// everything after the "Video:" / "Audio:" marker.
	videoStreamPattern = regexp.MustCompile(`(?m)^[ \t]*(Stream([^\r\n]*?): Video:[ \t]*([^\r\n]*))`)
	audioStreamPattern = regexp.MustCompile(`(?m)^[ \t]*(Stream([^\r\n]*?): Audio:[ \t]*([^\r\n]*))`)

	hasVideoPattern = regexp.MustCompile(`Stream.+Video`)
	hasAudioPattern = regexp.MustCompile(`Stream.+Audio`)

	durationPattern = regexp.MustCompile(`Duration: ([^,\r\n]*)`)
	bitratePattern  = regexp.MustCompile(`bitrate: ([^,\r\n]*)`)
	startPattern    = regexp.MustCompile(`start: ([^,\r\n]*)`)

	dimensionPattern  = regexp.MustCompile(`\b([1-9][0-9]*)x([1-9][0-9]*)\b`)
	timeBasePattern   = regexp.MustCompile(`([0-9.]+k?) (fps|tbr|tbc|tbn)\b`)
	aspectPattern     = regexp.MustCompile(`\[(?:PAR|SAR) ([0-9:.]+) DAR ([0-9:.]+)\]`)
	layoutPattern     = regexp.MustCompile(`(?i)\b(stereo|mono)\b`)
	surroundPattern   = regexp.MustCompile(`\b5\.1(?:\([a-z]+\))?`)
	sampleRatePattern = regexp.MustCompile(`\b([0-9]{3,6}) Hz\b`)
	kbpsPattern       = regexp.MustCompile(`\b([0-9]{1,3}) kb/s`)

	metadataLinePattern = regexp.MustCompile(`^[ \t]*([a-z_]+)[ \t]*: (.*?)[ \t\r]*$`)
)

// streamLine is one matched "Stream ...: Video|Audio: ..." line.
type streamLine struct {
	line string // from "Stream" to end of line
	id   string
	rest string // after the media type marker
	end  int    // offset in the source text just past the line
}

func findStream(pattern *regexp.Regexp, text string) (streamLine, bool) {
	m := pattern.FindStringSubmatchIndex(text)
	if m == nil {
		return streamLine{}, false
	}
	return streamLine{
		line: text[m[2]:m[3]],
		id:   strings.TrimSpace(text[m[4]:m[5]]),
		rest: text[m[6]:m[7]],
		end:  m[1],
	}, true
}

// dimensions is a WIDTHxHEIGHT token.
type dimensions struct {
	token  string
	width  string
	height string
}

func matchDimensions(rest string) (dimensions, bool) {
	m := dimensionPattern.FindStringSubmatch(rest)
	if m == nil {
		return dimensions{}, false
	}
	return dimensions{token: m[0], width: m[1], height: m[2]}, true
}

// timeBase is one "<number> <unit>" rate annotation.
type timeBase struct {
	token string
	kind  RateKind
	raw   string
}

func matchTimeBases(line string) []timeBase {
	matches := timeBasePattern.FindAllStringSubmatch(line, -1)
	bases := make([]timeBase, 0, len(matches))
	for _, m := range matches {
		bases = append(bases, timeBase{token: m[0], kind: RateKind(m[2]), raw: m[1]})
	}
	return bases
}

// parseRate converts "29.97", "1k" or "90k" to a number.
func parseRate(raw string) (float64, error) {
	multiplier := 1.0
	if trimmed, ok := strings.CutSuffix(raw, "k"); ok {
		raw = trimmed
		multiplier = 1000
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return value * multiplier, nil
}

func matchAspectRatio(line string) (par, dar string, ok bool) {
	m := aspectPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// matchLayout finds the channel layout token. stereo/mono win over 5.1 when
// both appear.
func matchLayout(line string) (token string, layout Layout, ok bool) {
	if tok := layoutPattern.FindString(line); tok != "" {
		return tok, Layout(cases.Lower(language.Und).String(tok)), true
	}
	if tok := surroundPattern.FindString(line); tok != "" {
		return tok, LayoutSurround51, true
	}
	return "", "", false
}

// matchNumberUnit returns the full token and the number for patterns of the
// form "<digits> <unit>".
func matchNumberUnit(pattern *regexp.Regexp, line string) (token, number string, ok bool) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[0], m[1], true
}

func isNotAvailable(value string) bool {
	// Casers are stateful; build one per call so rules stay goroutine-safe.
	folder := cases.Fold()
	return folder.String(strings.TrimSpace(value)) == folder.String("N/A")
}

// leadingDigits returns the run of ASCII digits at the start of value.
func leadingDigits(value string) string {
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	return value[:end]
}
