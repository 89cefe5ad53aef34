package cli

import (
	"encoding/json"
	"os"
	"strings"

	"auto-transcoder/internal/jobstore"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdoutIsTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// resolveConfigPath maps an optional --config value to the jobs file path.
func resolveConfigPath(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}
	return jobstore.DefaultPath()
}
