package cli

import (
	"flag"
	"fmt"
	"os"

	"auto-transcoder/internal/ffmpeg"
	"auto-transcoder/internal/jobstore"
)

type doctorReport struct {
	FFmpeg     ffmpeg.DependencyReport `json:"ffmpeg"`
	ConfigPath string                  `json:"config_path"`
	JobCount   int                     `json:"job_count"`
	Problems   []string                `json:"problems"`
}

// runDoctor checks external dependencies and the stored job configuration.
func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	config := fs.String("config", "", "jobs file path (defaults to the user config dir)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	report := doctorReport{
		FFmpeg:   ffmpeg.DependencyStatus(),
		Problems: []string{},
	}
	if !report.FFmpeg.FFmpegFound {
		report.Problems = append(report.Problems, "ffmpeg not found; run 'auto-transcoder fetch-binaries' or install it on PATH")
	}
	if !report.FFmpeg.FFprobeFound {
		report.Problems = append(report.Problems, "ffprobe not found; duration probing (and therefore progress %) will be unavailable")
	}

	configPath, err := resolveConfigPath(*config)
	if err != nil {
		return err
	}
	report.ConfigPath = configPath

	jobs, err := jobstore.Load(configPath)
	if err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("jobs file unreadable: %v", err))
	} else {
		report.JobCount = len(jobs)
		for _, job := range jobs {
			if _, err := os.Stat(job.InputFolder); err != nil {
				report.Problems = append(report.Problems, fmt.Sprintf("job %q: input folder %s is not accessible", job.Name, job.InputFolder))
			}
		}
	}

	if *jsonOut {
		return printJSON(report)
	}

	printCheck("ffmpeg", report.FFmpeg.FFmpegFound, report.FFmpeg.FFmpegPath)
	printCheck("ffprobe", report.FFmpeg.FFprobeFound, report.FFmpeg.FFprobePath)
	fmt.Printf("config: %s (%d job(s))\n", report.ConfigPath, report.JobCount)
	if len(report.Problems) == 0 {
		fmt.Println("all checks passed")
		return nil
	}
	for _, p := range report.Problems {
		fmt.Printf("problem: %s\n", p)
	}
	return fmt.Errorf("%d problem(s) found", len(report.Problems))
}

func printCheck(name string, found bool, path string) {
	if found {
		fmt.Printf("%s: %s\n", name, path)
		return
	}
	fmt.Printf("%s: NOT FOUND\n", name)
}
