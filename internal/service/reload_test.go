package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

func TestReloadDetector_IgnoresOwnWrites(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	d := NewReloadDetector(ctx, env.store, env.bus, nil)
	env.bus.SubscribeAll(d.Track)

	_, err := env.service.ChangeTheme(ctx, domain.ThemeDark)
	require.NoError(t, err)
	env.received = nil

	assert.Empty(t, d.Check(ctx))
	assert.Empty(t, env.received)
	assert.Equal(t, domain.ThemeDark, d.Snapshot().Theme.Name)
}

func TestReloadDetector_PublishesExternalDiff(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.ChangeTheme(ctx, domain.ThemeDark)
	require.NoError(t, err)

	d := NewReloadDetector(ctx, env.store, env.bus, nil)
	env.bus.SubscribeAll(d.Track)
	env.received = nil

	external := `{"theme":{"name":"dark"},"font":{"family":"Lato","size":18},"language":{"code":"nl"}}`
	require.NoError(t, os.WriteFile(env.store.Path(), []byte(external), 0o600))

	events := d.Check(ctx)

	require.Len(t, events, 2)
	font, ok := events[0].(domain.FontChanged)
	require.True(t, ok)
	assert.Equal(t, domain.FontPreference{Family: "Lato", Size: 18}, font.New)
	lang, ok := events[1].(domain.LanguageChanged)
	require.True(t, ok)
	assert.Equal(t, "Nederlands", lang.New.Name)
	assert.Equal(t, events[0].Metadata().CorrelationID, events[1].Metadata().CorrelationID)

	assert.Len(t, env.received, 2)
	assert.Empty(t, d.Check(ctx), "same content must not be reported twice")
}

func TestReloadDetector_DeletedFileResetsToDefaults(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.ChangeTheme(ctx, domain.ThemeSystem)
	require.NoError(t, err)

	d := NewReloadDetector(ctx, env.store, env.bus, nil)
	require.NoError(t, os.Remove(env.store.Path()))

	events := d.Check(ctx)

	require.Len(t, events, 1)
	assert.Equal(t, domain.KindThemeChanged, events[0].Kind())
	assert.Equal(t, domain.DefaultUserSettings(), d.Snapshot())
}
