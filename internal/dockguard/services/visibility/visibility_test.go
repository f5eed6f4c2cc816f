package visibility_test

import (
	"testing"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/services/visibility"
	"github.com/stretchr/testify/require"
)

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name     string
		resource []string
		visible  []string
		hidden   []string
		want     bool
	}{
		{
			name:     "no restrictions",
			resource: []string{"prod", "web"},
			want:     true,
		},
		{
			name: "no restrictions and no resource tags",
			want: true,
		},
		{
			name:     "blacklist match hides",
			resource: []string{"prod", "secret"},
			hidden:   []string{"secret"},
			want:     false,
		},
		{
			name:     "blacklist wins over whitelist",
			resource: []string{"prod", "secret"},
			visible:  []string{"prod"},
			hidden:   []string{"secret"},
			want:     false,
		},
		{
			name:     "whitelist match shows",
			resource: []string{"prod", "web"},
			visible:  []string{"web"},
			want:     true,
		},
		{
			name:     "whitelist miss hides",
			resource: []string{"staging"},
			visible:  []string{"prod"},
			want:     false,
		},
		{
			name:    "whitelist set and resource untagged",
			visible: []string{"prod"},
			want:    false,
		},
		{
			name:   "blacklist set and resource untagged",
			hidden: []string{"secret"},
			want:   true,
		},
		{
			name:     "blacklist miss falls through to default allow",
			resource: []string{"web"},
			hidden:   []string{"secret"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, visibility.IsVisible(tt.resource, tt.visible, tt.hidden))
		})
	}
}

func TestFilterContainers(t *testing.T) {
	containers := []models.Container{
		{ID: 1, Name: "web", Tags: []string{"prod", "web"}},
		{ID: 2, Name: "db", Tags: []string{"prod", "secret"}},
		{ID: 3, Name: "batch", Tags: nil},
	}

	viewer := models.User{ //nolint:exhaustruct
		VisibleTags: nil,
		HiddenTags:  []string{"secret"},
	}

	got := visibility.FilterContainers(containers, viewer)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].ID)
	require.Equal(t, int64(3), got[1].ID)

	// A viewer without restrictions sees everything.
	all := visibility.FilterContainers(containers, models.User{}) //nolint:exhaustruct
	require.Len(t, all, 3)
}
