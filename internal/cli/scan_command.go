package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"auto-transcoder/internal/jobstore"
	"auto-transcoder/internal/scanner"
)

type scanReport struct {
	Job     string   `json:"job"`
	Pending []string `json:"pending"`
	Outputs []string `json:"outputs"`
}

// runScan reports what a job's next cycle would pick up, without launching
// anything.
func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	name := fs.String("name", "", "job name to scan")
	config := fs.String("config", "", "jobs file path (defaults to the user config dir)")
	jsonOut := fs.Bool("json", false, "print JSON output")
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
	jobs, err := jobstore.Load(configPath)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if job.Name != strings.TrimSpace(*name) {
			continue
		}
		pending, err := scanner.FindPending(job.InputFolder, job.OutputFolder, job.OutputExtension)
		if err != nil {
			return err
		}

		report := scanReport{Job: job.Name, Pending: pending}
		for _, f := range pending {
			report.Outputs = append(report.Outputs, scanner.BuildOutputPath(f, job.OutputFolder, job.OutputExtension))
		}

		if *jsonOut {
			return printJSON(report)
		}
		if len(pending) == 0 {
			fmt.Printf("job %q: nothing pending\n", job.Name)
			return nil
		}
		fmt.Printf("job %q: %d file(s) pending\n", job.Name, len(pending))
		for i, f := range pending {
			fmt.Printf("  %s -> %s\n", f, report.Outputs[i])
		}
		return nil
	}
	return fmt.Errorf("%w: %q", jobstore.ErrJobNotFound, strings.TrimSpace(*name))
}
