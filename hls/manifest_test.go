package hls

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXT-X-PLAYLIST-TYPE:VOD
#EXTINF:10.000000,
segment_000.ts
#EXTINF:10.000000,
segment_001.ts
#EXTINF:4.266667,
segment_002.ts
#EXT-X-ENDLIST
`

func TestFinalizeManifestRewritesSegments(t *testing.T) {
	base := "https://example.com/api/videos/9/hls/720p"
	out := string(FinalizeManifest([]byte(rawManifest), base))

	assert.Contains(t, out, base+"/segment_000.ts\n")
	assert.Contains(t, out, base+"/segment_001.ts\n")
	assert.Contains(t, out, base+"/segment_002.ts\n")
	assert.NotContains(t, out, "\nsegment_000.ts")
	assert.Equal(t, 3, CountSegments([]byte(out)))
}

func TestFinalizeManifestPreservesDirectives(t *testing.T) {
	out := string(FinalizeManifest([]byte(rawManifest), "/base"))

	var inDirectives, outDirectives []string
	for _, line := range strings.Split(rawManifest, "\n") {
		if strings.HasPrefix(line, "#") {
			inDirectives = append(inDirectives, line)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "#") {
			outDirectives = append(outDirectives, line)
		}
	}
	assert.Equal(t, inDirectives, outDirectives, "directive lines must pass through untouched, in order")
}

func TestFinalizeManifestByteStable(t *testing.T) {
	base := "http://host/api/videos/1/hls/480p"
	first := FinalizeManifest([]byte(rawManifest), base)
	second := FinalizeManifest([]byte(rawManifest), base)
	assert.Equal(t, first, second)

	// trailing slash on the base must not change the output
	assert.Equal(t, first, FinalizeManifest([]byte(rawManifest), base+"/"))
}

func TestFinalizeManifestAbsoluteSourceReferences(t *testing.T) {
	// some encoders emit paths; only the filename should survive
	manifest := "#EXTM3U\n#EXTINF:10.0,\n/tmp/build/segment_000.ts\n#EXT-X-ENDLIST\n"
	out := string(FinalizeManifest([]byte(manifest), "/base"))
	assert.Contains(t, out, "/base/segment_000.ts")
	assert.NotContains(t, out, "/tmp/build")
}

func TestCountSegments(t *testing.T) {
	assert.Equal(t, 3, CountSegments([]byte(rawManifest)))
	assert.Equal(t, 0, CountSegments([]byte("#EXTM3U\n#EXT-X-ENDLIST\n")))
}

func TestValidateManifest(t *testing.T) {
	require.NoError(t, ValidateManifest([]byte(rawManifest)))

	assert.Error(t, ValidateManifest([]byte("")), "empty")
	assert.Error(t, ValidateManifest([]byte("#EXTM3U\n#EXT-X-ENDLIST\n")), "no segments")
	assert.Error(t, ValidateManifest([]byte("#EXTM3U\n#EXTINF:10.0,\nsegment_000.ts\n")), "no endlist")
	assert.Error(t, ValidateManifest([]byte("#EXTINF:10.0,\nsegment_000.ts\n#EXT-X-ENDLIST\n")), "no header")
}
