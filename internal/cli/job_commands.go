package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"auto-transcoder/internal/jobstore"
	"auto-transcoder/internal/model"
	"auto-transcoder/internal/presets"
)

func runAddJob(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "unique job name")
	input := fs.String("input", "", "input folder to watch")
	output := fs.String("output", "", "output folder for converted files")
	ext := fs.String("ext", "", "output file extension (defaults to the preset's container)")
	preset := fs.String("preset", "", "encode preset name (see 'presets')")
	ffmpegArgs := fs.String("ffmpeg-args", "", "raw ffmpeg flags, whitespace-separated (overrides --preset)")
	interval := fs.Int("interval", jobstore.DefaultIntervalSeconds, "scan interval in seconds")
	replace := fs.Bool("replace", false, "overwrite an existing job with the same name")
	config := fs.String("config", "", "jobs file path (defaults to the user config dir)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath, err := resolveConfigPath(*config)
	if err != nil {
		return err
	}

	job := model.TranscodeJob{
		Name:            strings.TrimSpace(*name),
		InputFolder:     strings.TrimSpace(*input),
		OutputFolder:    strings.TrimSpace(*output),
		OutputExtension: strings.TrimSpace(*ext),
		IntervalSeconds: *interval,
	}

	switch {
	case strings.TrimSpace(*ffmpegArgs) != "":
		job.FFmpegArgs = strings.Fields(*ffmpegArgs)
	case strings.TrimSpace(*preset) != "":
		p, err := presets.Lookup(*preset)
		if err != nil {
			return err
		}
		job.FFmpegArgs = append([]string(nil), p.FFmpegArgs...)
		if job.OutputExtension == "" {
			job.OutputExtension = p.OutputExtension
		}
	default:
		fs.Usage()
		return errors.New("either --preset or --ffmpeg-args is required")
	}

	stored, err := jobstore.Add(configPath, job, *replace)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(stored)
	}
	fmt.Printf("job %q saved (%s -> %s, ext %s, every %ds)\n",
		stored.Name, stored.InputFolder, stored.OutputFolder, stored.OutputExtension, stored.IntervalSeconds)
	return nil
}

func runListJobs(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	config := fs.String("config", "", "jobs file path (defaults to the user config dir)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath, err := resolveConfigPath(*config)
	if err != nil {
		return err
	}
	jobs, err := jobstore.Load(configPath)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(jobs)
	}
	if len(jobs) == 0 {
		fmt.Println("no jobs configured")
		return nil
	}
	for _, job := range jobs {
		fmt.Printf("%s\n", job.Name)
		fmt.Printf("  input:    %s\n", job.InputFolder)
		fmt.Printf("  output:   %s (%s)\n", job.OutputFolder, job.OutputExtension)
		fmt.Printf("  interval: %ds\n", job.IntervalSeconds)
		fmt.Printf("  ffmpeg:   %s\n", strings.Join(job.FFmpegArgs, " "))
	}
	return nil
}

func runRemoveJob(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	name := fs.String("name", "", "job name to remove")
	config := fs.String("config", "", "jobs file path (defaults to the user config dir)")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		fs.Usage()
		return errors.New("--name is required")
	}

	configPath, err := resolveConfigPath(*config)
	if err != nil {
		return err
	}
	if err := jobstore.Remove(configPath, strings.TrimSpace(*name)); err != nil {
		return err
	}
	fmt.Printf("job %q removed\n", strings.TrimSpace(*name))
	return nil
}

func runPresets(args []string) error {
	fs := flag.NewFlagSet("presets", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	all := presets.All()
	if *jsonOut {
		return printJSON(all)
	}
	for _, p := range all {
		fmt.Printf("%-14s %s (%s)\n", p.Name, p.DisplayName, p.OutputExtension)
		fmt.Printf("  %s\n", strings.Join(p.FFmpegArgs, " "))
	}
	return nil
}
