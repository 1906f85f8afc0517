package pawhaven

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	settingTheme        = "theme"
	settingSessionEmail = "session_email"
	settingSessionToken = "session_token"
)

// Settings is the application-level preference store: the theme choice and
// the signed-in session, persisted locally. Theme changes notify
// subscribers so anything rendering can react without re-reading storage.
type Settings struct {
	db *sql.DB

	mu          sync.Mutex
	subscribers []func(Theme)
}

func NewSettings() (*Settings, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}

	return &Settings{db: db}, nil
}

func NewSettingsWithDB(db *sql.DB) *Settings {
	return &Settings{db: db}
}

// DB exposes the underlying handle so the journal can share it.
func (s *Settings) DB() *sql.DB {
	return s.db
}

func (s *Settings) get(key string) (string, error) {
	var value string

	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("encountered an error reading setting %q: %s", key, err)
	}

	return value, nil
}

func (s *Settings) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("encountered an error persisting setting %q: %s", key, err)
	}

	return nil
}

func (s *Settings) delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("encountered an error clearing setting %q: %s", key, err)
		}
	}

	return nil
}

// Theme defaults to light when nothing has been persisted yet.
func (s *Settings) Theme() Theme {
	value, err := s.get(settingTheme)
	if err != nil || value == "" {
		return ThemeLight
	}

	return Theme(value)
}

func (s *Settings) SetTheme(theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unsupported theme: %s", theme)
	}

	if err := s.set(settingTheme, string(theme)); err != nil {
		return err
	}

	s.mu.Lock()
	subscribers := make([]func(Theme), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, notify := range subscribers {
		notify(theme)
	}

	return nil
}

func (s *Settings) Subscribe(notify func(Theme)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, notify)
}

func (s *Settings) SaveSession(email, token string) error {
	if err := s.set(settingSessionEmail, email); err != nil {
		return err
	}

	return s.set(settingSessionToken, token)
}

func (s *Settings) Email() (string, error) {
	return s.get(settingSessionEmail)
}

// Token returns the persisted session token, empty when signed out.
func (s *Settings) Token() (string, error) {
	return s.get(settingSessionToken)
}

// Clear drops the persisted session, leaving preferences intact.
func (s *Settings) Clear() error {
	return s.delete(settingSessionEmail, settingSessionToken)
}
