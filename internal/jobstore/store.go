// Package jobstore persists job definitions as JSON under the platform
// config directory. Only the fields that describe a job are stored; runtime
// state (status, pending files, errors) never touches disk.
package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"auto-transcoder/internal/model"
)

const (
	schemaVersion = 1
	jobsFileName  = "jobs.json"

	// DefaultIntervalSeconds applies when a job omits its scan interval.
	DefaultIntervalSeconds = 300
)

// ErrJobExists is returned when adding a job whose name is already stored.
var ErrJobExists = errors.New("job already exists")

// ErrJobNotFound is returned when removing or fetching an unknown job.
var ErrJobNotFound = errors.New("job not found")

type jobsFile struct {
	SchemaVersion int                  `json:"schema_version"`
	UpdatedAt     string               `json:"updated_at"`
	Jobs          []model.TranscodeJob `json:"jobs"`
}

// DefaultPath returns the platform config location of the jobs file, e.g.
// ~/.config/auto-transcoder/jobs.json on Linux.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(configDir, "auto-transcoder", jobsFileName), nil
}

// Load reads all stored jobs. A missing file means no jobs yet, not an
// error. Loaded jobs come back normalized and sorted by name.
func Load(path string) ([]model.TranscodeJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.TranscodeJob{}, nil
		}
		return nil, fmt.Errorf("read jobs file %s: %w", path, err)
	}

	var file jobsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse jobs file %s: %w", path, err)
	}

	jobs := make([]model.TranscodeJob, 0, len(file.Jobs))
	for _, job := range file.Jobs {
		jobs = append(jobs, Normalize(job))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// Save writes the full job list, replacing any previous contents. The write
// is atomic: a temp file in the target directory renamed over the original.
func Save(path string, jobs []model.TranscodeJob) error {
	file := jobsFile{
		SchemaVersion: schemaVersion,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		Jobs:          jobs,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs for %s: %w", path, err)
	}
	data = append(data, '\n')
	return writeAtomic(path, data)
}

// Add stores a new job. With replace set, an existing job of the same name
// is overwritten instead of failing.
func Add(path string, job model.TranscodeJob, replace bool) (model.TranscodeJob, error) {
	job = Normalize(job)
	if err := Validate(job); err != nil {
		return model.TranscodeJob{}, err
	}

	jobs, err := Load(path)
	if err != nil {
		return model.TranscodeJob{}, err
	}

	replaced := false
	for i := range jobs {
		if jobs[i].Name == job.Name {
			if !replace {
				return model.TranscodeJob{}, fmt.Errorf("%w: %q", ErrJobExists, job.Name)
			}
			jobs[i] = job
			replaced = true
			break
		}
	}
	if !replaced {
		jobs = append(jobs, job)
		sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	}

	if err := Save(path, jobs); err != nil {
		return model.TranscodeJob{}, err
	}
	return job, nil
}

// Remove deletes a stored job by name.
func Remove(path, name string) error {
	jobs, err := Load(path)
	if err != nil {
		return err
	}
	kept := jobs[:0]
	for _, job := range jobs {
		if job.Name != name {
			kept = append(kept, job)
		}
	}
	if len(kept) == len(jobs) {
		return fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	return Save(path, kept)
}

// Normalize trims fields, defaults the scan interval, and forces the output
// extension into ".ext" form.
func Normalize(job model.TranscodeJob) model.TranscodeJob {
	job.Name = strings.TrimSpace(job.Name)
	job.InputFolder = strings.TrimSpace(job.InputFolder)
	job.OutputFolder = strings.TrimSpace(job.OutputFolder)
	job.OutputExtension = strings.ToLower(strings.TrimSpace(job.OutputExtension))
	if job.OutputExtension != "" && !strings.HasPrefix(job.OutputExtension, ".") {
		job.OutputExtension = "." + job.OutputExtension
	}
	if job.IntervalSeconds <= 0 {
		job.IntervalSeconds = DefaultIntervalSeconds
	}
	job.Status = ""
	job.PendingFiles = nil
	job.ErrorMessage = ""
	return job
}

// Validate rejects jobs that cannot be scheduled.
func Validate(job model.TranscodeJob) error {
	switch {
	case job.Name == "":
		return errors.New("job name is required")
	case job.InputFolder == "":
		return fmt.Errorf("job %q: input folder is required", job.Name)
	case job.OutputFolder == "":
		return fmt.Errorf("job %q: output folder is required", job.Name)
	case job.OutputExtension == "":
		return fmt.Errorf("job %q: output extension is required", job.Name)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".jobs-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("atomic rename for %s: %w", path, err)
	}
	return nil
}
