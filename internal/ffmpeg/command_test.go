package ffmpeg

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"auto-transcoder/internal/model"
)

func TestBuildTranscodeCommand_ArgumentOrder(t *testing.T) {
	t.Setenv(ffmpegEnvVar, "/opt/ffmpeg")
	tmp := t.TempDir()

	job := model.TranscodeJob{
		Name:       "proxies",
		FFmpegArgs: []string{"-c:v", "dnxhd", "-b:v", "36M", "-c:a", "pcm_s16le"},
	}
	outputFile := filepath.Join(tmp, "proxies", "clip.mxf")

	args, err := BuildTranscodeCommand(job, "/rushes/clip.mov", outputFile)
	if err != nil {
		t.Fatalf("build command: %v", err)
	}

	want := []string{
		"/opt/ffmpeg",
		"-i", "/rushes/clip.mov",
		"-nostats",
		"-progress", "pipe:1",
		"-c:v", "dnxhd", "-b:v", "36M", "-c:a", "pcm_s16le",
		"-y", outputFile,
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
}

func TestBuildTranscodeCommand_CreatesOutputDirectory(t *testing.T) {
	tmp := t.TempDir()
	outputFile := filepath.Join(tmp, "a", "b", "clip.mp4")

	if _, err := BuildTranscodeCommand(model.TranscodeJob{}, "/in/clip.mov", outputFile); err != nil {
		t.Fatal(err)
	}

	if fi, err := os.Stat(filepath.Dir(outputFile)); err != nil || !fi.IsDir() {
		t.Fatalf("expected output directory to exist, stat err=%v", err)
	}
}

func TestBuildProbeCommand(t *testing.T) {
	t.Setenv(ffprobeEnvVar, "/opt/ffprobe")

	args := BuildProbeCommand("/rushes/clip.mov")
	want := []string{
		"/opt/ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"/rushes/clip.mov",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
}
