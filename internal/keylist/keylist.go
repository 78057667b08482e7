package keylist

import (
	"fmt"
	"os"
	"strings"
)

// Load reads API keys from path. Keys may be separated by newlines, commas,
// or both. Blank entries and lines starting with '#' are skipped, and
// duplicates are dropped keeping the first occurrence.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key list %s: %w", path, err)
	}
	keys := Parse(string(data))
	if len(keys) == 0 {
		return nil, fmt.Errorf("key list %s contains no keys", path)
	}
	return keys, nil
}

// Parse splits raw key-list content into de-duplicated keys.
func Parse(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	seen := make(map[string]struct{}, len(lines))
	var result []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, entry := range strings.Split(line, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if _, ok := seen[entry]; !ok {
				seen[entry] = struct{}{}
				result = append(result, entry)
			}
		}
	}
	return result
}
