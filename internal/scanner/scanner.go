// Package scanner diffs an input folder against an output folder to find
// source files that still need transcoding. Pure directory listing, no
// process execution, so it stays trivially unit-testable.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Input extensions recognized as source media (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mxf":  true,
	".avi":  true,
	".mkv":  true,
	".m4v":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
	".mpg":  true,
	".mpeg": true,
	".m2t":  true,
	".m2ts": true,
	".dv":   true,
	".r3d":  true, // RED raw
	".braw": true, // Blackmagic raw
}

// IsMediaFile reports whether a path carries a recognized source extension.
func IsMediaFile(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// FindPending returns input files that do not yet have a matching output
// file. Matching is by stem (filename without extension):
//
//	input/clip001.mov -> output/clip001.mp4  done
//	input/clip002.mov -> (missing)           pending
//
// A missing input folder yields an empty result; a missing output folder
// means nothing has been converted yet, so everything is pending. The result
// is sorted lexicographically so repeated scans are stable.
func FindPending(inputFolder, outputFolder, outputExt string) ([]string, error) {
	inputs, err := collectMediaFiles(inputFolder)
	if err != nil {
		return nil, err
	}

	doneStems, err := collectStems(outputFolder, outputExt)
	if err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(inputs))
	for _, f := range inputs {
		if !doneStems[stem(f)] {
			pending = append(pending, f)
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// BuildOutputPath maps an input file to its expected output path:
// stem preserved, extension replaced, parent set to the output folder.
func BuildOutputPath(inputFile, outputFolder, outputExt string) string {
	return filepath.Join(outputFolder, stem(inputFile)+outputExt)
}

// collectMediaFiles lists source media directly inside folder (non-recursive).
func collectMediaFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read input folder %s: %w", folder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsMediaFile(e.Name()) {
			files = append(files, filepath.Join(folder, e.Name()))
		}
	}
	return files, nil
}

// collectStems returns the stems of files with the given extension inside
// folder. A missing folder yields an empty set.
func collectStems(folder, ext string) (map[string]bool, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("read output folder %s: %w", folder, err)
	}

	stems := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			stems[stem(e.Name())] = true
		}
	}
	return stems, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
