// Package imageprobe decides whether a file that ffmpeg reports as a video
// stream is really a still image.
package imageprobe

import (
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"mediaprobe/internal/logging"
)

// Prober inspects file headers through a filesystem.
type Prober struct {
	fs     afero.Fs
	logger *slog.Logger
}

// New constructs a prober. A nil logger discards output.
func New(fs afero.Fs, logger *slog.Logger) *Prober {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Prober{fs: fs, logger: logger}
}

// LooksLikeImage reports whether path decodes as a registered still-image
// format. Only the header is read. Any failure counts as "not an image".
func (p *Prober) LooksLikeImage(path string) bool {
	f, err := p.fs.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return false
	}
	if p.logger != nil {
		p.logger.Debug("image format detected", logging.String("path", path), logging.String("format", format))
	}
	return true
}
