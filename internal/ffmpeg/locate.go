// Package ffmpeg wraps the external ffmpeg and ffprobe binaries: locating
// them, assembling argument lists, probing media metadata, and parsing the
// machine-readable progress stream.
package ffmpeg

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	ffmpegEnvVar  = "AUTO_TRANSCODER_FFMPEG"
	ffprobeEnvVar = "AUTO_TRANSCODER_FFPROBE"
)

// ManagedBinDir is where fetch-binaries installs static builds. Lookup order
// everywhere else is: env override, managed dir, then PATH.
func ManagedBinDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "auto-transcoder", "bin")
}

// FFmpegPath resolves the ffmpeg binary to invoke.
func FFmpegPath() string {
	return resolveBinary(ffmpegEnvVar, "ffmpeg")
}

// FFprobePath resolves the ffprobe binary to invoke.
func FFprobePath() string {
	return resolveBinary(ffprobeEnvVar, "ffprobe")
}

func resolveBinary(envVar, name string) string {
	if override := strings.TrimSpace(os.Getenv(envVar)); override != "" {
		return override
	}
	if dir := ManagedBinDir(); dir != "" {
		managed := filepath.Join(dir, exeName(name))
		if fi, err := os.Stat(managed); err == nil && !fi.IsDir() {
			return managed
		}
	}
	return name // rely on PATH lookup at exec time
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// DependencyReport describes whether the external tools are reachable.
type DependencyReport struct {
	FFmpegFound  bool   `json:"ffmpeg_found"`
	FFmpegPath   string `json:"ffmpeg_path,omitempty"`
	FFprobeFound bool   `json:"ffprobe_found"`
	FFprobePath  string `json:"ffprobe_path,omitempty"`
}

// DependencyStatus resolves both binaries without executing them.
func DependencyStatus() DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath(FFmpegPath()); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	if path, err := exec.LookPath(FFprobePath()); err == nil {
		report.FFprobeFound = true
		report.FFprobePath = path
	}
	return report
}
