package deps

import (
	"context"
	"time"
)

const versionTimeout = 5 * time.Second

// Versioner reports the version banner of a resolved binary.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// CheckFFmpeg resolves the configured ffmpeg binary and, when it is found
// and v is non-nil, records its version line in Detail. A binary that
// resolves but fails to report a version is still marked unavailable since
// probing would fail the same way.
func CheckFFmpeg(ctx context.Context, binary string, v Versioner) Status {
	status := CheckBinaries([]Requirement{{
		Name:        "FFmpeg",
		Command:     binary,
		Description: "Required to read media information",
	}})[0]
	if !status.Available || v == nil {
		return status
	}

	checkCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	version, err := v.Version(checkCtx)
	if err != nil {
		status.Available = false
		status.Detail = "version check failed: " + err.Error()
		return status
	}
	status.Detail = version
	return status
}
