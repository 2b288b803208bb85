package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

func themeChanged() domain.ThemeChanged {
	return domain.ThemeChanged{
		EventMeta: domain.EventMeta{OccurredAt: time.Now(), CorrelationID: "c1"},
		Old:       domain.DefaultTheme(),
		New:       domain.ThemePreference{Name: domain.ThemeDark},
	}
}

func TestManager_ConnectBroadcastDisconnect(t *testing.T) {
	m := NewManager(nil)

	client, err := m.Connect()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(client.ID, "sse-"))
	assert.Equal(t, 1, m.ClientCount())

	require.NoError(t, m.HandleEvent(context.Background(), themeChanged()))

	select {
	case e := <-client.EventChan:
		assert.Equal(t, EventType(domain.KindThemeChanged), e.Type)
	default:
		t.Fatal("expected event")
	}

	m.Disconnect(client.ID)
	assert.Zero(t, m.ClientCount())
	m.Disconnect(client.ID)
}

func TestManager_DropsForSlowClient(t *testing.T) {
	m := NewManager(nil)
	client, err := m.Connect()
	require.NoError(t, err)

	for range clientBuffer + 5 {
		require.NoError(t, m.HandleEvent(context.Background(), themeChanged()))
	}

	assert.Len(t, client.EventChan, clientBuffer)
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(nil)
	client, err := m.Connect()
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))

	_, open := <-client.Done
	assert.False(t, open)
	assert.Zero(t, m.ClientCount())

	late, err := m.Connect()
	require.NoError(t, err)
	_, open = <-late.Done
	assert.False(t, open)
	assert.Zero(t, m.ClientCount())
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := NewManager(nil)
	srv := httptest.NewServer(NewHandler(m, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, m.HandleEvent(ctx, themeChanged()))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: settings.") {
			break
		}
	}
	assert.Equal(t, "event: settings.theme_changed\n", line)

	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"correlation_id":"c1"`)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(nil), nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
