package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfiles(t *testing.T) {
	require.NoError(t, ValidateProfiles())
}

func TestProfilesAscendingResolution(t *testing.T) {
	profiles := Profiles()
	require.NotEmpty(t, profiles)
	for i := 1; i < len(profiles); i++ {
		assert.GreaterOrEqual(t, profiles[i].Height, profiles[i-1].Height,
			"profiles must be ordered by ascending resolution")
	}
}

func TestProfileFor(t *testing.T) {
	for _, label := range QualityLabels() {
		profile, ok := ProfileFor(label)
		require.True(t, ok, label)
		assert.Equal(t, label, profile.Label)
		assert.Positive(t, profile.Width)
		assert.Positive(t, profile.Height)
	}

	_, ok := ProfileFor("4320p")
	assert.False(t, ok)
}

func TestQualityLabelsClosedSet(t *testing.T) {
	assert.Equal(t, []string{"480p", "720p", "1080p"}, QualityLabels())
}
