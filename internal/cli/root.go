package cli

import "fmt"

// Run dispatches one invocation of the auto-transcoder CLI.
func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "watch":
		return runWatch(args[1:])
	case "add":
		return runAddJob(args[1:])
	case "list":
		return runListJobs(args[1:])
	case "remove":
		return runRemoveJob(args[1:])
	case "scan":
		return runScan(args[1:])
	case "presets":
		return runPresets(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "fetch-binaries":
		return runFetchBinaries(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("auto-transcoder: watch-folder ffmpeg transcode scheduler")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  auto-transcoder fetch-binaries")
	fmt.Println("  auto-transcoder add --name proxies --input /rushes --output /proxies --preset h264-proxy")
	fmt.Println("  auto-transcoder watch")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  watch           run all configured jobs until interrupted (--dashboard for live TUI)")
	fmt.Println("  add             add or replace a job definition")
	fmt.Println("  list            list configured jobs")
	fmt.Println("  remove          remove a job definition")
	fmt.Println("  scan            one-shot pending report for a job (nothing is transcoded)")
	fmt.Println("  presets         list built-in encode presets")
	fmt.Println("  doctor          run dependency and configuration preflight checks")
	fmt.Println("  fetch-binaries  download static ffmpeg/ffprobe builds")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Jobs persist under the user config directory; see 'doctor' for the path")
}
