package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"mediaprobe/internal/deps"
)

// CheckFFmpeg verifies the configured ffmpeg binary resolves and runs.
func CheckFFmpeg(ctx context.Context, binary string, v deps.Versioner) Result {
	status := deps.CheckFFmpeg(ctx, binary, v)
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	detail := status.Path
	if status.Detail != "" {
		detail = fmt.Sprintf("%s (%s)", status.Path, status.Detail)
	}
	return Result{Name: status.Name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
