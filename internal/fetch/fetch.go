// Package fetch downloads static ffmpeg/ffprobe builds into the managed bin
// directory so the tool works without a system-wide ffmpeg install.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Release of the ffmpeg-static project the binaries are pinned to.
const baseURL = "https://github.com/eugeneware/ffmpeg-static/releases/download/b6.1.1"

// Result reports what Binaries actually did.
type Result struct {
	Downloaded []string `json:"downloaded"`
	Skipped    []string `json:"skipped"`
}

// Binaries ensures ffmpeg and ffprobe exist in destDir, downloading whatever
// is missing. progress (optional) receives the binary name and a 0 to 100
// percentage while a download runs. Partial downloads are removed on failure.
func Binaries(destDir string, progress func(name string, pct int)) (Result, error) {
	var result Result

	suffix, err := platformSuffix()
	if err != nil {
		return result, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return result, fmt.Errorf("create bin directory %s: %w", destDir, err)
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		dest := filepath.Join(destDir, exeName(name))
		if _, err := os.Stat(dest); err == nil {
			result.Skipped = append(result.Skipped, dest)
			continue
		}

		url := fmt.Sprintf("%s/%s-%s", baseURL, name, suffix)
		if err := download(client, url, dest, name, progress); err != nil {
			return result, err
		}
		result.Downloaded = append(result.Downloaded, dest)
	}
	return result, nil
}

func download(client *http.Client, url, dest, name string, progress func(string, int)) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "auto-transcoder-fetch")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	reader := io.Reader(resp.Body)
	if progress != nil && resp.ContentLength > 0 {
		reader = &progressReader{
			inner: resp.Body,
			total: resp.ContentLength,
			emit:  func(pct int) { progress(name, pct) },
		}
	}

	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

type progressReader struct {
	inner   io.Reader
	total   int64
	read    int64
	lastPct int
	emit    func(pct int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.inner.Read(b)
	p.read += int64(n)
	pct := int(p.read * 100 / p.total)
	if pct != p.lastPct {
		p.lastPct = pct
		p.emit(pct)
	}
	return n, err
}

func platformSuffix() (string, error) {
	switch runtime.GOOS + "/" + runtime.GOARCH {
	case "linux/amd64":
		return "linux-x64", nil
	case "linux/arm64":
		return "linux-arm64", nil
	case "darwin/amd64":
		return "darwin-x64", nil
	case "darwin/arm64":
		return "darwin-arm64", nil
	case "windows/amd64":
		return "win32-x64", nil
	default:
		return "", fmt.Errorf("no prebuilt ffmpeg for %s/%s; install ffmpeg on PATH instead", runtime.GOOS, runtime.GOARCH)
	}
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
