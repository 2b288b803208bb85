package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/errors"
)

var testMeta = domain.EventMeta{
	OccurredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	CorrelationID: "corr-1",
}

func strPtr(s string) *string { return &s }

func requireFailure(t *testing.T, err error, code errors.Code) *errors.Error {
	t.Helper()
	require.Error(t, err)
	var failure *errors.Error
	require.True(t, errors.As(err, &failure), "expected *errors.Error, got %T", err)
	assert.Equal(t, code, failure.Code)
	return failure
}

func TestThemeChange(t *testing.T) {
	current := domain.DefaultUserSettings()

	for _, name := range domain.ValidThemes {
		t.Run(name, func(t *testing.T) {
			event, err := ThemeChange(name, current, testMeta)
			require.NoError(t, err)
			assert.Equal(t, domain.ThemePreference{Name: "light"}, event.Old)
			assert.Equal(t, name, event.New.Name)
			assert.Equal(t, testMeta, event.EventMeta)
			assert.Equal(t, domain.KindThemeChanged, event.Kind())
		})
	}

	t.Run("neon rejected", func(t *testing.T) {
		_, err := ThemeChange("neon", current, testMeta)
		failure := requireFailure(t, err, errors.CodeInvalidTheme)
		assert.Equal(t, map[string]any{"theme": "neon"}, failure.Details)
		assert.Contains(t, failure.Message, "neon")
	})
}

func TestFontChange_SizeBoundaries(t *testing.T) {
	current := domain.DefaultUserSettings()

	tests := []struct {
		size  int
		valid bool
	}{
		{9, false},
		{10, true},
		{14, true},
		{24, true},
		{25, false},
	}

	for _, tt := range tests {
		event, err := FontChange("Inter", tt.size, current, testMeta)
		if tt.valid {
			require.NoError(t, err, "size %d", tt.size)
			assert.Equal(t, tt.size, event.New.Size)
			continue
		}
		requireFailure(t, err, errors.CodeInvalidFontSize)
	}
}

func TestFontChange_Messages(t *testing.T) {
	current := domain.DefaultUserSettings()

	_, err := FontChange("Inter", 8, current, testMeta)
	failure := requireFailure(t, err, errors.CodeInvalidFontSize)
	assert.Equal(t, "Font size must be between 10 and 24, got 8", failure.Message)
	assert.Equal(t, map[string]any{"size": 8}, failure.Details)

	// Family is checked before size.
	_, err = FontChange("Comic Sans", 8, current, testMeta)
	requireFailure(t, err, errors.CodeInvalidFontFamily)
}

func TestLanguageChange_NameComesFromMap(t *testing.T) {
	current := domain.DefaultUserSettings()

	event, err := LanguageChange("de", current, testMeta)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguagePreference{Code: "de", Name: "Deutsch"}, event.New)
	assert.Equal(t, domain.DefaultLanguage(), event.Old)

	_, err = LanguageChange("xx", current, testMeta)
	requireFailure(t, err, errors.CodeInvalidLanguage)
}

func TestAVCodingChange_SpeakerFormats(t *testing.T) {
	current := domain.DefaultUserSettings()

	tests := []struct {
		format string
		valid  bool
	}{
		{"Speaker {n}", true},
		{"{n}", true},
		{"P{n}", true},
		{"", false},
		{"Speaker", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			event, err := AVCodingChange(domain.TimestampMMSS, tt.format, current, testMeta)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.format, event.New.SpeakerFormat)
				return
			}
			requireFailure(t, err, errors.CodeInvalidSpeakerFormat)
		})
	}
}

func TestAVCodingChange_TimestampFormat(t *testing.T) {
	_, err := AVCodingChange("SS", "Speaker {n}", domain.DefaultUserSettings(), testMeta)
	requireFailure(t, err, errors.CodeInvalidTimestampFormat)
}

func TestBackupChange_Boundaries(t *testing.T) {
	current := domain.DefaultUserSettings()

	intervals := []struct {
		minutes int
		valid   bool
	}{
		{4, false}, {5, true}, {120, true}, {121, false},
	}
	for _, tt := range intervals {
		_, err := BackupChange(true, tt.minutes, 5, nil, current, testMeta)
		if tt.valid {
			assert.NoError(t, err, "interval %d", tt.minutes)
		} else {
			requireFailure(t, err, errors.CodeInvalidBackupInterval)
		}
	}

	counts := []struct {
		count int
		valid bool
	}{
		{0, false}, {1, true}, {20, true}, {21, false},
	}
	for _, tt := range counts {
		_, err := BackupChange(true, 30, tt.count, nil, current, testMeta)
		if tt.valid {
			assert.NoError(t, err, "max backups %d", tt.count)
		} else {
			requireFailure(t, err, errors.CodeInvalidMaxBackups)
		}
	}
}

func TestBackupChange_CopiesPath(t *testing.T) {
	path := "/backups"
	event, err := BackupChange(true, 10, 3, &path, domain.DefaultUserSettings(), testMeta)
	require.NoError(t, err)

	path = "/changed"
	require.NotNil(t, event.New.BackupPath)
	assert.Equal(t, "/backups", *event.New.BackupPath)
	assert.Nil(t, event.Old.BackupPath)
}

func TestCloudSyncChange(t *testing.T) {
	defaults := domain.DefaultUserSettings()
	configured := defaults.WithBackend(domain.BackendConfig{ConvexURL: strPtr("https://happy-otter.convex.cloud")})

	t.Run("enable without url fails", func(t *testing.T) {
		_, err := CloudSyncChange(true, nil, nil, defaults, testMeta)
		requireFailure(t, err, errors.CodeConfigurationFailed)
	})

	t.Run("enable with new url", func(t *testing.T) {
		event, err := CloudSyncChange(true, strPtr("https://happy-otter.convex.cloud"), nil, defaults, testMeta)
		require.NoError(t, err)
		assert.True(t, event.New.CloudSyncEnabled)
		assert.Equal(t, "https://happy-otter.convex.cloud", *event.New.ConvexURL)
		assert.False(t, event.Old.CloudSyncEnabled)
	})

	t.Run("enable with previously configured url", func(t *testing.T) {
		event, err := CloudSyncChange(true, nil, nil, configured, testMeta)
		require.NoError(t, err)
		assert.True(t, event.New.CloudSyncEnabled)
		assert.Equal(t, "https://happy-otter.convex.cloud", *event.New.ConvexURL)
	})

	t.Run("malformed url rejected", func(t *testing.T) {
		_, err := CloudSyncChange(false, strPtr("not a url"), nil, defaults, testMeta)
		requireFailure(t, err, errors.CodeInvalidConvexURL)
	})

	t.Run("clearing url while enabling fails", func(t *testing.T) {
		_, err := CloudSyncChange(true, strPtr(""), nil, configured, testMeta)
		requireFailure(t, err, errors.CodeConfigurationFailed)
	})

	t.Run("disable keeps url and sets project", func(t *testing.T) {
		event, err := CloudSyncChange(false, nil, strPtr("proj-1"), configured, testMeta)
		require.NoError(t, err)
		assert.False(t, event.New.CloudSyncEnabled)
		require.NotNil(t, event.New.ConvexURL)
		require.NotNil(t, event.New.ConvexProjectID)
		assert.Equal(t, "proj-1", *event.New.ConvexProjectID)
	})
}

func TestDerivers_DoNotMutateCurrent(t *testing.T) {
	current := domain.DefaultUserSettings()
	snapshot := current

	_, _ = ThemeChange("dark", current, testMeta)
	_, _ = FontChange("Roboto", 20, current, testMeta)
	_, _ = CloudSyncChange(true, strPtr("https://x.convex.cloud"), nil, current, testMeta)

	assert.Equal(t, snapshot, current)
}

func TestResetChanges(t *testing.T) {
	assert.Empty(t, ResetChanges(domain.DefaultUserSettings(), testMeta))

	changed := domain.DefaultUserSettings().
		WithTheme(domain.ThemePreference{Name: "dark"}).
		WithFont(domain.FontPreference{Family: "Roboto", Size: 18})

	events := ResetChanges(changed, testMeta)
	require.Len(t, events, 2)
	assert.Equal(t, domain.KindThemeChanged, events[0].Kind())
	assert.Equal(t, domain.KindFontChanged, events[1].Kind())
}
