package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Title(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected string
	}{
		{
			name: "single artist",
			track: Track{
				ID:       "spotify-id-123",
				Name:     "Shape of You",
				Artists:  []string{"Ed Sheeran"},
				Duration: 4 * time.Minute,
			},
			expected: "Shape of You - Ed Sheeran",
		},
		{
			name: "multiple artists",
			track: Track{
				Name:    "Under Pressure",
				Artists: []string{"Queen", "David Bowie"},
			},
			expected: "Under Pressure - Queen, David Bowie",
		},
		{
			name:     "no artists",
			track:    Track{Name: "Untitled"},
			expected: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.Title())
		})
	}
}
