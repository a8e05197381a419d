// Package preferences is the client's local key/value storage: the chosen
// theme and the last active book.
package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ziadkadry99/dynbook/internal/db"
)

// Keys under which values are stored.
const (
	ThemeKey      = "dynamic-book-theme"
	ActiveBookKey = "dynamic-book-active"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "dark" or "light".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("invalid theme %q: must be dark or light", s)
	}
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool { return t == ThemeDark }

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t.IsDark() {
		return ThemeLight
	}
	return ThemeDark
}

// BodyClass is the CSS class applied to the page body.
func (t Theme) BodyClass() string {
	if t.IsDark() {
		return "dark-theme"
	}
	return "light-theme"
}

// Store reads and writes preferences.
type Store struct {
	db       *db.DB
	fallback Theme
}

// NewStore creates a Store. fallback is the theme used when none is stored;
// an invalid fallback means light.
func NewStore(database *db.DB, fallback Theme) *Store {
	if _, err := ParseTheme(string(fallback)); err != nil {
		fallback = ThemeLight
	}
	return &Store{db: database, fallback: fallback}
}

// Get returns the stored value for key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// Delete removes a value. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting preference %s: %w", key, err)
	}
	return nil
}

// Theme returns the stored theme. Unknown stored values count as light, the
// same as an unset value with a light fallback.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := s.Get(ctx, ThemeKey)
	if err != nil {
		return s.fallback, err
	}
	if !ok {
		return s.fallback, nil
	}
	if Theme(v) == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

// SetTheme persists t.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return s.Set(ctx, ThemeKey, string(t))
}

// ToggleTheme flips and persists the theme, returning the new one.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// ActiveBookID returns the id of the last active book, or "".
func (s *Store) ActiveBookID(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, ActiveBookKey)
	return v, err
}

// SetActiveBookID persists id; an empty id clears it.
func (s *Store) SetActiveBookID(ctx context.Context, id string) error {
	if id == "" {
		return s.Delete(ctx, ActiveBookKey)
	}
	return s.Set(ctx, ActiveBookKey, id)
}
