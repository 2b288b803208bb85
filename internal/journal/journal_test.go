package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func themeAt(ts time.Time, name string) domain.ThemeChanged {
	return domain.ThemeChanged{
		EventMeta: domain.EventMeta{OccurredAt: ts, CorrelationID: "corr-" + name},
		Old:       domain.DefaultTheme(),
		New:       domain.ThemePreference{Name: name},
	}
}

func TestRecord_AndRecentNewestFirst(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(ctx, themeAt(base, domain.ThemeDark)))
	require.NoError(t, j.Record(ctx, themeAt(base.Add(time.Minute), domain.ThemeSystem)))
	require.NoError(t, j.Record(ctx, domain.FontChanged{
		EventMeta: domain.EventMeta{OccurredAt: base.Add(2 * time.Minute), CorrelationID: "corr-font"},
		Old:       domain.DefaultFont(),
		New:       domain.FontPreference{Family: "Lato", Size: 12},
	}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, domain.KindFontChanged, entries[0].Kind)
	assert.Equal(t, "corr-system", entries[1].CorrelationID)
	assert.Equal(t, "corr-dark", entries[2].CorrelationID)
	assert.True(t, base.Equal(entries[2].OccurredAt))
	assert.NotEmpty(t, entries[0].ID)

	var payload domain.FontChanged
	require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
	assert.Equal(t, "Lato", payload.New.Family)
}

func TestRecent_Limit(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()
	base := time.Now()

	for i := range 5 {
		require.NoError(t, j.Record(ctx, themeAt(base.Add(time.Duration(i)*time.Second), domain.ThemeDark)))
	}

	entries, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRecent_Empty(t *testing.T) {
	j := setupTestJournal(t)

	entries, err := j.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecord_CanceledContext(t *testing.T) {
	j := setupTestJournal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, j.Record(ctx, themeAt(time.Now(), domain.ThemeDark)), context.Canceled)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, themeAt(time.Now(), domain.ThemeDark)))
	require.NoError(t, j.Close())

	j, err = Open(dir, nil)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInvertedTimestamp_SortsDescending(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Nanosecond)

	assert.Less(t, invertedTimestamp(newer), invertedTimestamp(older))
	assert.Len(t, invertedTimestamp(older), 19)
}
