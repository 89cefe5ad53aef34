package cli

import (
	"flag"
	"fmt"
	"strings"

	"auto-transcoder/internal/fetch"
	"auto-transcoder/internal/ffmpeg"
)

// runFetchBinaries downloads static ffmpeg/ffprobe builds into the managed
// bin directory.
func runFetchBinaries(args []string) error {
	fs := flag.NewFlagSet("fetch-binaries", flag.ContinueOnError)
	dest := fs.String("dest", "", "install directory (defaults to the managed bin dir)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	destDir := strings.TrimSpace(*dest)
	if destDir == "" {
		destDir = ffmpeg.ManagedBinDir()
		if destDir == "" {
			return fmt.Errorf("cannot resolve a managed bin directory; pass --dest explicitly")
		}
	}

	var progress func(name string, pct int)
	if !*jsonOut && stdoutIsTTY() {
		progress = func(name string, pct int) {
			fmt.Printf("\r\033[2Kdownloading %s... %d%%", name, pct)
			if pct >= 100 {
				fmt.Println()
			}
		}
	}

	result, err := fetch.Binaries(destDir, progress)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(result)
	}
	for _, p := range result.Downloaded {
		fmt.Printf("downloaded: %s\n", p)
	}
	for _, p := range result.Skipped {
		fmt.Printf("already present: %s\n", p)
	}
	return nil
}
