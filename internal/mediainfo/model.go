package mediainfo

import (
	"encoding/json"
	"maps"

	"github.com/samber/mo"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"mediaprobe/internal/timecode"
)

// Kind classifies a media file.
type Kind string

const (
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindImage   Kind = "image"
	KindUnknown Kind = "unknown"
)

// RateKind names a time base annotation on a video stream line.
type RateKind string

const (
	RateFPS RateKind = "fps"
	RateTBR RateKind = "tbr"
	RateTBC RateKind = "tbc"
	RateTBN RateKind = "tbn"
)

// Layout is an audio channel layout.
type Layout string

const (
	LayoutMono       Layout = "mono"
	LayoutStereo     Layout = "stereo"
	LayoutSurround51 Layout = "5.1"
)

// Channels returns the channel count implied by the layout. Unknown layouts
// yield 0; the audio rule only ever produces the three known values.
func (l Layout) Channels() uint32 {
	switch l {
	case LayoutMono:
		return 1
	case LayoutStereo:
		return 2
	case LayoutSurround51:
		return 6
	default:
		return 0
	}
}

// BitrateUnknown is the value the container bitrate takes when ffmpeg prints
// "bitrate: N/A". It is distinct from an absent bitrate and is kept as-is for
// compatibility with existing consumers.
const BitrateUnknown int64 = -1

// MediaInfo is the record extracted from one probe report.
type MediaInfo struct {
	Kind     Kind                       `json:"type"`
	Duration mo.Option[timecode.Offset] `json:"duration"`
	// Bitrate is in kb/s. BitrateUnknown (-1) means the report said N/A;
	// None means the report had no bitrate at all.
	Bitrate mo.Option[int64]           `json:"bitrate"`
	Start   mo.Option[timecode.Offset] `json:"start"`
	Video   mo.Option[VideoStream]     `json:"video"`
	Audio   mo.Option[AudioStream]     `json:"audio"`
}

// Clone returns a deep copy so cached records are never shared mutably.
func (m MediaInfo) Clone() MediaInfo {
	out := m
	if v, ok := m.Video.Get(); ok {
		out.Video = mo.Some(v.Clone())
	}
	if a, ok := m.Audio.Get(); ok {
		out.Audio = mo.Some(a.Clone())
	}
	return out
}

// VideoStream describes the first video stream of a file.
type VideoStream struct {
	Width              mo.Option[uint32]    `json:"width"`
	Height             mo.Option[uint32]    `json:"height"`
	TimeBases          map[RateKind]float64 `json:"time_bases"`
	FrameRate          mo.Option[float64]   `json:"frame_rate"`
	FrameCount         mo.Option[uint64]    `json:"frame_count"`
	PixelAspectRatio   mo.Option[string]    `json:"pixel_aspect_ratio"`
	DisplayAspectRatio mo.Option[string]    `json:"display_aspect_ratio"`
	PixelFormat        mo.Option[string]    `json:"pixel_format"`
	Codec              mo.Option[string]    `json:"codec"`
	Metadata           *Metadata            `json:"metadata"`
}

// Clone returns a deep copy of the stream.
func (v VideoStream) Clone() VideoStream {
	out := v
	out.TimeBases = maps.Clone(v.TimeBases)
	out.Metadata = v.Metadata.Clone()
	return out
}

// AudioStream describes the first audio stream of a file.
type AudioStream struct {
	Layout       mo.Option[Layout]  `json:"layout"`
	ChannelCount mo.Option[uint32]  `json:"channels"`
	SampleRateHz mo.Option[float64] `json:"sample_rate"`
	BitrateKbps  mo.Option[float64] `json:"bitrate"`
	Codec        mo.Option[string]  `json:"codec"`
	Metadata     *Metadata          `json:"metadata"`
}

// Clone returns a deep copy of the stream.
func (a AudioStream) Clone() AudioStream {
	out := a
	out.Metadata = a.Metadata.Clone()
	return out
}

// Metadata is a tag mapping with unique keys kept in first-occurrence order.
// Setting an existing key replaces its value without moving it.
type Metadata struct {
	tags *orderedmap.OrderedMap[string, string]
}

// NewMetadata returns an empty mapping.
func NewMetadata() *Metadata {
	return &Metadata{tags: orderedmap.New[string, string]()}
}

// Set stores value under key.
func (m *Metadata) Set(key, value string) {
	m.tags.Set(key, value)
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	return m.tags.Get(key)
}

// Len returns the number of tags.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return m.tags.Len()
}

// Keys returns tag names in order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(key, _ string) {
		keys = append(keys, key)
	})
	return keys
}

// Each calls fn for every tag in order.
func (m *Metadata) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for pair := m.tags.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns an independent copy.
func (m *Metadata) Clone() *Metadata {
	out := NewMetadata()
	m.Each(out.Set)
	return out
}

// MarshalJSON encodes the tags as an object in order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.tags)
}
