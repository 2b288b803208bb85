package domain

import (
	"slices"
	"time"
)

// RecentProject is a reference to a previously opened project, keyed by Path.
type RecentProject struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	LastOpened time.Time `json:"last_opened"`
}

// AddRecentProject returns a new list with p inserted. An existing entry with
// the same path is replaced, the list is sorted by LastOpened descending and
// truncated to MaxRecentProjects. p wins ties, so it lands first unless another
// entry is strictly newer. The input slice is not modified.
func AddRecentProject(projects []RecentProject, p RecentProject) []RecentProject {
	out := make([]RecentProject, 0, len(projects)+1)
	out = append(out, p)
	for _, existing := range projects {
		if existing.Path != p.Path {
			out = append(out, existing)
		}
	}
	sortRecentProjects(out)
	if len(out) > MaxRecentProjects {
		out = out[:MaxRecentProjects]
	}
	return out
}

// RemoveRecentProject returns a new list without the entry for path.
func RemoveRecentProject(projects []RecentProject, path string) []RecentProject {
	out := make([]RecentProject, 0, len(projects))
	for _, p := range projects {
		if p.Path != path {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeRecentProjects drops entries without a path, keeps the newest entry
// per path, sorts by LastOpened descending and enforces MaxRecentProjects.
// Entries with equal timestamps keep their stored order.
func NormalizeRecentProjects(projects []RecentProject) []RecentProject {
	index := make(map[string]int, len(projects))
	out := make([]RecentProject, 0, len(projects))
	for _, p := range projects {
		if p.Path == "" {
			continue
		}
		i, ok := index[p.Path]
		if !ok {
			index[p.Path] = len(out)
			out = append(out, p)
			continue
		}
		if p.LastOpened.After(out[i].LastOpened) {
			out[i] = p
		}
	}

	sortRecentProjects(out)
	if len(out) > MaxRecentProjects {
		out = out[:MaxRecentProjects]
	}
	return out
}

// sortRecentProjects orders by LastOpened descending, keeping the current
// order of equal timestamps.
func sortRecentProjects(projects []RecentProject) {
	slices.SortStableFunc(projects, func(a, b RecentProject) int {
		return b.LastOpened.Compare(a.LastOpened)
	})
}
