// Package presets is a small catalog of common proxy/delivery encode
// settings so a job can be created without hand-writing ffmpeg flags.
package presets

import (
	"fmt"
	"sort"
	"strings"
)

// Preset maps a short name to a ready-made ffmpeg argument list and the
// container extension those arguments expect.
type Preset struct {
	Name             string
	DisplayName      string
	OutputExtension  string
	FFmpegArgs       []string
	AllowedExts      []string
	SupportsProfiles []string
}

var catalog = []Preset{
	{
		Name:            "h264-proxy",
		DisplayName:     "H.264 editing proxy",
		OutputExtension: ".mp4",
		FFmpegArgs: []string{
			"-c:v", "libx264", "-preset", "fast", "-crf", "23",
			"-vf", "scale=-2:1080",
			"-c:a", "aac", "-b:a", "192k",
		},
		AllowedExts: []string{".mp4", ".mkv", ".mov"},
	},
	{
		Name:            "hevc",
		DisplayName:     "H.265 (HEVC) delivery",
		OutputExtension: ".mp4",
		FFmpegArgs: []string{
			"-c:v", "libx265", "-preset", "medium", "-crf", "26",
			"-c:a", "aac", "-b:a", "160k",
		},
		AllowedExts: []string{".mp4", ".mkv"},
	},
	{
		Name:            "prores-proxy",
		DisplayName:     "Apple ProRes Proxy",
		OutputExtension: ".mov",
		FFmpegArgs: []string{
			"-c:v", "prores_ks", "-profile:v", "proxy",
			"-c:a", "pcm_s16le",
		},
		AllowedExts:      []string{".mov"},
		SupportsProfiles: []string{"proxy", "lt", "standard", "hq", "4444"},
	},
	{
		Name:            "dnxhr-lb",
		DisplayName:     "Avid DNxHR LB",
		OutputExtension: ".mxf",
		FFmpegArgs: []string{
			"-c:v", "dnxhd", "-profile:v", "dnxhr_lb",
			"-c:a", "pcm_s16le",
		},
		AllowedExts:      []string{".mxf", ".mov"},
		SupportsProfiles: []string{"lb", "sq", "hq", "hqx", "444"},
	},
	{
		Name:            "remux",
		DisplayName:     "Copy (remux only)",
		OutputExtension: ".mov",
		FFmpegArgs:      []string{"-c", "copy"},
		AllowedExts:     []string{".mov", ".mp4", ".mkv", ".mxf"},
	},
}

// All returns the catalog sorted by preset name.
func All() []Preset {
	out := append([]Preset(nil), catalog...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a preset by its short name (case-insensitive).
func Lookup(name string) (Preset, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range catalog {
		if p.Name == want {
			return p, nil
		}
	}
	names := make([]string, 0, len(catalog))
	for _, p := range catalog {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(names, ", "))
}
