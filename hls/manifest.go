package hls

import (
	"fmt"
	"path"
	"strings"
)

// FinalizeManifest rewrites every segment-reference line of a raw
// encoder-produced playlist to an URL rooted at baseURL, so segment
// requests route through the serving layer. Directive lines (#EXT...)
// and blank lines pass through untouched. The rewrite is pure: identical
// input and baseURL always produce identical output.
func FinalizeManifest(manifest []byte, baseURL string) []byte {
	base := strings.TrimSuffix(baseURL, "/")
	lines := strings.Split(string(manifest), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines[i] = base + "/" + path.Base(trimmed)
	}
	return []byte(strings.Join(lines, "\n"))
}

// CountSegments returns the number of segment-reference lines.
func CountSegments(manifest []byte) int {
	count := 0
	for _, line := range strings.Split(string(manifest), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			count++
		}
	}
	return count
}

// ValidateManifest checks that the encoder produced a complete VOD
// playlist: the #EXTM3U header, at least one segment, and a terminating
// #EXT-X-ENDLIST.
func ValidateManifest(manifest []byte) error {
	text := string(manifest)
	if !strings.HasPrefix(strings.TrimSpace(text), "#EXTM3U") {
		return fmt.Errorf("manifest missing #EXTM3U header")
	}
	if !strings.Contains(text, "#EXT-X-ENDLIST") {
		return fmt.Errorf("manifest missing #EXT-X-ENDLIST terminator")
	}
	if CountSegments(manifest) == 0 {
		return fmt.Errorf("manifest references no segments")
	}
	return nil
}
