package visibility

import (
	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
)

// IsVisible decides whether a resource carrying resourceTags may be
// shown to a viewer with the given whitelist and blacklist.
//
// The blacklist wins unconditionally: any intersection with hiddenTags
// hides the resource even when the whitelist also matches. An empty or
// absent tag set means "no restriction", never "restrict to nothing".
func IsVisible(resourceTags, visibleTags, hiddenTags []string) bool {
	if len(hiddenTags) > 0 && intersects(resourceTags, hiddenTags) {
		return false
	}

	if len(visibleTags) > 0 {
		return intersects(resourceTags, visibleTags)
	}

	return true
}

// ContainerVisibleTo applies the user's tag filters to one container.
// Evaluated per resource, per request; tag sets can change between calls.
func ContainerVisibleTo(c models.Container, viewer models.User) bool {
	return IsVisible(c.Tags, viewer.VisibleTags, viewer.HiddenTags)
}

// FilterContainers narrows a listing to the containers the viewer may see.
func FilterContainers(containers []models.Container, viewer models.User) []models.Container {
	visible := make([]models.Container, 0, len(containers))

	for _, c := range containers {
		if ContainerVisibleTo(c, viewer) {
			visible = append(visible, c)
		}
	}

	return visible
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}

	for _, t := range a {
		if _, ok := set[t]; ok {
			return true
		}
	}

	return false
}
