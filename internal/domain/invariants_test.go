package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTheme(t *testing.T) {
	for _, name := range []string{"light", "dark", "system"} {
		assert.True(t, IsValidTheme(name), name)
	}
	for _, name := range []string{"neon", "", "Dark"} {
		assert.False(t, IsValidTheme(name), name)
	}
}

func TestIsValidFontSize_InclusiveBounds(t *testing.T) {
	tests := []struct {
		size int
		want bool
	}{
		{9, false},
		{10, true},
		{24, true},
		{25, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidFontSize(tt.size), "size %d", tt.size)
	}
}

func TestIsValidSpeakerFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"Speaker {n}", true},
		{"{n}", true},
		{"P{n}", true},
		{"", false},
		{"Speaker", false},
		{"Speaker {N}", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidSpeakerFormat(tt.format))
		})
	}
}

func TestIsValidBackupInterval_AndMaxBackups(t *testing.T) {
	assert.False(t, IsValidBackupInterval(4))
	assert.True(t, IsValidBackupInterval(5))
	assert.True(t, IsValidBackupInterval(120))
	assert.False(t, IsValidBackupInterval(121))

	assert.False(t, IsValidMaxBackups(0))
	assert.True(t, IsValidMaxBackups(1))
	assert.True(t, IsValidMaxBackups(20))
	assert.False(t, IsValidMaxBackups(21))
}

func TestIsValidTimestampFormat(t *testing.T) {
	assert.True(t, IsValidTimestampFormat("HH:MM:SS"))
	assert.True(t, IsValidTimestampFormat("MM:SS"))
	assert.True(t, IsValidTimestampFormat("HH:MM:SS.mmm"))
	assert.False(t, IsValidTimestampFormat("hh:mm"))
}

func TestIsValidLanguageCode(t *testing.T) {
	assert.True(t, IsValidLanguageCode("en"))
	assert.True(t, IsValidLanguageCode("ja"))
	assert.False(t, IsValidLanguageCode("EN"))
	assert.False(t, IsValidLanguageCode("en-US"))
}

func TestIsValidConvexURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://happy-otter-123.convex.cloud", true},
		{"http://localhost:3210", true},
		{"", false},
		{"happy-otter.convex.cloud", false},
		{"ftp://example.com", false},
		{"https://", false},
		{" https://example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidConvexURL(tt.url))
		})
	}
}

func TestCanEnableCloudSync(t *testing.T) {
	valid := "https://happy-otter.convex.cloud"
	empty := ""

	assert.True(t, CanEnableCloudSync(false, nil, nil), "disabling is always allowed")
	assert.False(t, CanEnableCloudSync(true, nil, nil))
	assert.False(t, CanEnableCloudSync(true, &empty, nil))
	assert.True(t, CanEnableCloudSync(true, &valid, nil))
	assert.True(t, CanEnableCloudSync(true, nil, &valid))
}
