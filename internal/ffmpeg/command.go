package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"

	"auto-transcoder/internal/model"
)

// BuildTranscodeCommand assembles the full ffmpeg argument list for one file:
//
//	ffmpeg
//	  -i <input>
//	  -nostats           suppress human-readable stats on stderr
//	  -progress pipe:1   machine-readable key=value progress on stdout
//	  <job.FFmpegArgs>   codec, filters, bitrate, etc., passed verbatim
//	  -y                 overwrite output without prompting
//	  <output>
//
// The output directory is created here so ffmpeg never fails purely on a
// missing parent.
func BuildTranscodeCommand(job model.TranscodeJob, inputFile, outputFile string) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory for %s: %w", outputFile, err)
	}

	args := []string{
		FFmpegPath(),
		"-i", inputFile,
		"-nostats",
		"-progress", "pipe:1",
	}
	args = append(args, job.FFmpegArgs...)
	args = append(args, "-y", outputFile)
	return args, nil
}

// BuildProbeCommand returns the ffprobe invocation Probe would run, for
// logging or terminal debugging without executing anything.
func BuildProbeCommand(inputFile string) []string {
	return []string{
		FFprobePath(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputFile,
	}
}
