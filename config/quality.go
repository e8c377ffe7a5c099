package config

import "fmt"

// QualityProfile describes one target rendition. The set of labels is
// closed: adding a rendition means adding a profile here, not a schema
// change.
type QualityProfile struct {
	Label        string
	Width        int
	Height       int
	VideoBitrate string
	AudioBitrate string
}

// SegmentSeconds is the target HLS segment duration.
const SegmentSeconds = 10

// ordered by ascending resolution so partial availability surfaces the
// cheapest rendition first
var profiles = []QualityProfile{
	{Label: "480p", Width: 854, Height: 480, VideoBitrate: "800k", AudioBitrate: "96k"},
	{Label: "720p", Width: 1280, Height: 720, VideoBitrate: "2500k", AudioBitrate: "128k"},
	{Label: "1080p", Width: 1920, Height: 1080, VideoBitrate: "5000k", AudioBitrate: "160k"},
}

// Profiles returns the configured renditions in ascending resolution order.
func Profiles() []QualityProfile {
	out := make([]QualityProfile, len(profiles))
	copy(out, profiles)
	return out
}

func ProfileFor(label string) (QualityProfile, bool) {
	for _, p := range profiles {
		if p.Label == label {
			return p, true
		}
	}
	return QualityProfile{}, false
}

func QualityLabels() []string {
	labels := make([]string, 0, len(profiles))
	for _, p := range profiles {
		labels = append(labels, p.Label)
	}
	return labels
}

// ValidateProfiles is run once at startup.
func ValidateProfiles() error {
	seen := map[string]bool{}
	lastHeight := 0
	for _, p := range profiles {
		if p.Label == "" {
			return fmt.Errorf("quality profile with empty label")
		}
		if seen[p.Label] {
			return fmt.Errorf("duplicate quality profile %q", p.Label)
		}
		seen[p.Label] = true
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("quality profile %q has non-positive dimensions %dx%d", p.Label, p.Width, p.Height)
		}
		if p.VideoBitrate == "" || p.AudioBitrate == "" {
			return fmt.Errorf("quality profile %q is missing a bitrate", p.Label)
		}
		if p.Height < lastHeight {
			return fmt.Errorf("quality profiles must be ordered by ascending resolution, %q is out of order", p.Label)
		}
		lastHeight = p.Height
	}
	return nil
}
