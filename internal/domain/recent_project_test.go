package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(i int, at time.Time) RecentProject {
	return RecentProject{
		Path:       fmt.Sprintf("/projects/p%02d.qda", i),
		Name:       fmt.Sprintf("Project %d", i),
		LastOpened: at,
	}
}

func assertSortedDescending(t *testing.T, projects []RecentProject) {
	t.Helper()
	for i := 1; i < len(projects); i++ {
		assert.False(t, projects[i].LastOpened.After(projects[i-1].LastOpened),
			"entry %d is newer than entry %d", i, i-1)
	}
}

func TestAddRecentProject_EvictsOldest(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var list []RecentProject
	for i := range MaxRecentProjects {
		list = AddRecentProject(list, project(i, base.Add(time.Duration(i)*time.Hour)))
	}
	require.Len(t, list, MaxRecentProjects)

	list = AddRecentProject(list, project(99, base.Add(100*time.Hour)))

	require.Len(t, list, MaxRecentProjects)
	assert.Equal(t, "/projects/p99.qda", list[0].Path)
	for _, p := range list {
		assert.NotEqual(t, "/projects/p00.qda", p.Path, "oldest entry should be evicted")
	}
	assertSortedDescending(t, list)
}

func TestAddRecentProject_ReaddMovesToFront(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []RecentProject{}
	for i := range 3 {
		list = AddRecentProject(list, project(i, base.Add(time.Duration(i)*time.Hour)))
	}
	assert.Equal(t, "/projects/p02.qda", list[0].Path)

	reopened := project(0, base.Add(10*time.Hour))
	list = AddRecentProject(list, reopened)

	require.Len(t, list, 3)
	assert.Equal(t, "/projects/p00.qda", list[0].Path)
	assert.Equal(t, reopened.LastOpened, list[0].LastOpened)
	assertSortedDescending(t, list)
}

func TestAddRecentProject_SameInstantLandsFirst(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	list := []RecentProject{
		{Path: "/a", Name: "A", LastOpened: at},
		{Path: "/z", Name: "Z", LastOpened: at.Add(-time.Hour)},
	}

	list = AddRecentProject(list, RecentProject{Path: "/z", Name: "Z", LastOpened: at})

	require.Len(t, list, 2)
	assert.Equal(t, "/z", list[0].Path)
	assert.Equal(t, "/a", list[1].Path)
}

func TestNormalizeRecentProjects_KeepsStoredOrderOnTies(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	list := []RecentProject{
		{Path: "/z", LastOpened: at},
		{Path: "/a", LastOpened: at},
		{Path: "/m", LastOpened: at},
	}

	out := NormalizeRecentProjects(list)

	assert.Equal(t, []string{"/z", "/a", "/m"}, []string{out[0].Path, out[1].Path, out[2].Path})
}

func TestAddRecentProject_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []RecentProject{project(1, base), project(2, base.Add(-time.Hour))}
	snapshot := append([]RecentProject(nil), list...)

	_ = AddRecentProject(list, project(3, base.Add(time.Hour)))

	assert.Equal(t, snapshot, list)
}

func TestRemoveRecentProject(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []RecentProject{project(2, base.Add(time.Hour)), project(1, base)}

	out := RemoveRecentProject(list, "/projects/p02.qda")
	require.Len(t, out, 1)
	assert.Equal(t, "/projects/p01.qda", out[0].Path)

	assert.Len(t, RemoveRecentProject(list, "/missing"), 2)
}

func TestNormalizeRecentProjects(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []RecentProject{
		project(1, base),
		{Path: "", Name: "no path", LastOpened: base},
		project(1, base.Add(2*time.Hour)),
		project(2, base.Add(time.Hour)),
	}

	out := NormalizeRecentProjects(list)

	require.Len(t, out, 2)
	assert.Equal(t, "/projects/p01.qda", out[0].Path)
	assert.Equal(t, base.Add(2*time.Hour), out[0].LastOpened)
	assertSortedDescending(t, out)
}
