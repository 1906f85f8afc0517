package pawhaven

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T) *Settings {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "pawhaven.db"))

	settings, err := NewSettings()
	require.NoError(t, err)

	return settings
}

func TestThemeDefaultsToLight(t *testing.T) {
	settings := newTestSettings(t)

	assert.Equal(t, ThemeLight, settings.Theme())
}

func TestSetThemePersists(t *testing.T) {
	settings := newTestSettings(t)

	require.NoError(t, settings.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, settings.Theme())

	// A fresh store over the same database sees the persisted choice.
	reopened := NewSettingsWithDB(settings.DB())
	assert.Equal(t, ThemeDark, reopened.Theme())
}

func TestSetThemeRejectsUnknownThemes(t *testing.T) {
	settings := newTestSettings(t)

	assert.Error(t, settings.SetTheme(Theme("sepia")))
	assert.Equal(t, ThemeLight, settings.Theme())
}

func TestSetThemeNotifiesSubscribers(t *testing.T) {
	settings := newTestSettings(t)

	var seen []Theme
	settings.Subscribe(func(theme Theme) {
		seen = append(seen, theme)
	})

	require.NoError(t, settings.SetTheme(ThemeDark))
	require.NoError(t, settings.SetTheme(ThemeLight))

	assert.Equal(t, []Theme{ThemeDark, ThemeLight}, seen)
}

func TestSessionRoundTrip(t *testing.T) {
	settings := newTestSettings(t)

	token, err := settings.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "signed out by default")

	require.NoError(t, settings.SaveSession("dana@example.com", "tok-123"))

	email, err := settings.Email()
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", email)

	token, err = settings.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestClearDropsSessionButKeepsPreferences(t *testing.T) {
	settings := newTestSettings(t)

	require.NoError(t, settings.SetTheme(ThemeDark))
	require.NoError(t, settings.SaveSession("dana@example.com", "tok-123"))
	require.NoError(t, settings.Clear())

	token, err := settings.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	email, err := settings.Email()
	require.NoError(t, err)
	assert.Empty(t, email)

	assert.Equal(t, ThemeDark, settings.Theme())
}
