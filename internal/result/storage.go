package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var lhrFilePattern = regexp.MustCompile(`^lhr-\d+\.json$`)

// ListLHRFiles returns the paths of lhr-<N>.json files in dir, in directory
// listing order.
func ListLHRFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading results dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && lhrFilePattern.MatchString(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func ReadLHR(path string) (*LHR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lhr: %w", err)
	}
	var lhr LHR
	if err := json.Unmarshal(data, &lhr); err != nil {
		return nil, fmt.Errorf("parsing lhr %s: %w", path, err)
	}
	if lhr.FinalURL == "" {
		return nil, fmt.Errorf("parsing lhr %s: missing finalUrl", path)
	}
	return &lhr, nil
}

// WriteLHR stores lhr as dir/lhr-<n>.json.
func WriteLHR(dir string, n int64, lhr *LHR) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}
	data, err := json.MarshalIndent(lhr, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling lhr: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("lhr-%d.json", n))
	return path, os.WriteFile(path, data, 0o644)
}
