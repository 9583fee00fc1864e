// Package prefs implements the locale/preference store: persisted
// language, currency, timezone, and date-format choices, plus the
// formatting helpers nearly every console view depends on.
package prefs

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/abiolaogu/voxguard-console/internal/storage"
)

// DateFormat selects one of the three date-time rendering styles.
type DateFormat string

const (
	DateFormatShort  DateFormat = "short"
	DateFormatMedium DateFormat = "medium"
	DateFormatLong   DateFormat = "long"
)

// ParseDateFormat maps a raw string to a DateFormat, falling back to medium.
func ParseDateFormat(s string) DateFormat {
	switch DateFormat(strings.ToLower(strings.TrimSpace(s))) {
	case DateFormatShort:
		return DateFormatShort
	case DateFormatMedium:
		return DateFormatMedium
	case DateFormatLong:
		return DateFormatLong
	default:
		return DateFormatMedium
	}
}

// Theme is the console color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences is the persisted locale preference document.
type Preferences struct {
	Language          string     `json:"language"`
	Currency          string     `json:"currency"`
	SecondaryCurrency string     `json:"secondary_currency,omitempty"`
	Timezone          string     `json:"timezone"`
	DateFormat        DateFormat `json:"date_format"`
}

// Defaults returns the preference values used when nothing is stored yet.
func Defaults() Preferences {
	return Preferences{
		Language:   "en",
		Currency:   "NGN",
		Timezone:   "Africa/Lagos",
		DateFormat: DateFormatMedium,
	}
}

// ChangeEvent is broadcast to subscribers when a preference changes that
// other mounted components need to react to (currency, timezone).
type ChangeEvent struct {
	Field       string      `json:"field"`
	Preferences Preferences `json:"preferences"`
}

// Store manages locale preferences and the theme, both persisted through
// the state storage.
type Store struct {
	storage *storage.Store
	logger  *slog.Logger

	mu          sync.RWMutex
	loaded      bool
	current     Preferences
	theme       Theme
	themeLoaded bool

	subMu       sync.Mutex
	subscribers map[int]chan ChangeEvent
	nextSubID   int
}

// NewStore creates a preference store backed by st.
func NewStore(st *storage.Store, logger *slog.Logger) *Store {
	return &Store{
		storage:     st,
		logger:      logger,
		subscribers: make(map[int]chan ChangeEvent),
	}
}

// Get returns the current preferences, lazily initializing and persisting
// the defaults on first read.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() Preferences {
	if s.loaded {
		return s.current
	}

	var stored Preferences
	found, err := s.storage.Get(storage.KeyPreferences, &stored)
	if err != nil {
		s.logger.Warn("discarding unreadable preferences, using defaults", slog.Any("error", err))
		found = false
	}

	if found {
		stored.DateFormat = ParseDateFormat(string(stored.DateFormat))
		if stored.Language == "" {
			stored.Language = Defaults().Language
		}
		if stored.Currency == "" {
			stored.Currency = Defaults().Currency
		}
		if stored.Timezone == "" {
			stored.Timezone = Defaults().Timezone
		}
		s.current = stored
	} else {
		s.current = Defaults()
		if err := s.storage.Put(storage.KeyPreferences, s.current); err != nil {
			s.logger.Error("failed to persist default preferences", slog.Any("error", err))
		}
	}

	s.loaded = true
	return s.current
}

// SetLanguage updates the language code.
func (s *Store) SetLanguage(language string) {
	s.update("language", false, func(p *Preferences) {
		p.Language = language
	})
}

// SetCurrency updates the primary currency and notifies subscribers.
func (s *Store) SetCurrency(code string) {
	s.update("currency", true, func(p *Preferences) {
		p.Currency = strings.ToUpper(strings.TrimSpace(code))
	})
}

// SetSecondaryCurrency updates the optional secondary currency and
// notifies subscribers.
func (s *Store) SetSecondaryCurrency(code string) {
	s.update("secondary_currency", true, func(p *Preferences) {
		p.SecondaryCurrency = strings.ToUpper(strings.TrimSpace(code))
	})
}

// SetTimezone updates the IANA timezone and notifies subscribers.
func (s *Store) SetTimezone(tz string) {
	s.update("timezone", true, func(p *Preferences) {
		p.Timezone = tz
	})
}

// SetDateFormat updates the date-format style.
func (s *Store) SetDateFormat(format DateFormat) {
	s.update("date_format", false, func(p *Preferences) {
		p.DateFormat = ParseDateFormat(string(format))
	})
}

// Update replaces the whole preference document at once, broadcasting a
// single change event when currency or timezone moved.
func (s *Store) Update(next Preferences) {
	s.mu.Lock()
	prev := s.loadLocked()

	next.DateFormat = ParseDateFormat(string(next.DateFormat))
	next.Currency = strings.ToUpper(strings.TrimSpace(next.Currency))
	next.SecondaryCurrency = strings.ToUpper(strings.TrimSpace(next.SecondaryCurrency))
	if next.Language == "" {
		next.Language = prev.Language
	}
	if next.Timezone == "" {
		next.Timezone = prev.Timezone
	}

	s.current = next
	if err := s.storage.Put(storage.KeyPreferences, s.current); err != nil {
		s.logger.Error("failed to persist preferences", slog.Any("error", err))
	}
	broadcastWorthy := prev.Currency != next.Currency ||
		prev.SecondaryCurrency != next.SecondaryCurrency ||
		prev.Timezone != next.Timezone
	snapshot := s.current
	s.mu.Unlock()

	if broadcastWorthy {
		s.broadcast(ChangeEvent{Field: "preferences", Preferences: snapshot})
	}
}

func (s *Store) update(field string, notify bool, mutate func(*Preferences)) {
	s.mu.Lock()
	current := s.loadLocked()
	mutate(&current)
	s.current = current
	if err := s.storage.Put(storage.KeyPreferences, s.current); err != nil {
		s.logger.Error("failed to persist preferences", slog.Any("error", err))
	}
	snapshot := s.current
	s.mu.Unlock()

	if notify {
		s.broadcast(ChangeEvent{Field: field, Preferences: snapshot})
	}
}

// Subscribe registers a change-event listener. The returned cancel func
// must be called on teardown.
func (s *Store) Subscribe() (<-chan ChangeEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan ChangeEvent, 8)
	s.subscribers[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}

func (s *Store) broadcast(event ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than block setters
		}
	}
}

// GetTheme returns the persisted theme, defaulting to dark.
func (s *Store) GetTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.themeLoaded {
		return s.theme
	}

	var stored struct {
		Mode Theme `json:"mode"`
	}
	found, err := s.storage.Get(storage.KeyTheme, &stored)
	if err != nil {
		s.logger.Warn("discarding unreadable theme state", slog.Any("error", err))
	}
	if found && (stored.Mode == ThemeLight || stored.Mode == ThemeDark) {
		s.theme = stored.Mode
	} else {
		s.theme = ThemeDark
	}
	s.themeLoaded = true
	return s.theme
}

// SetTheme persists the theme choice.
func (s *Store) SetTheme(theme Theme) {
	if theme != ThemeLight && theme != ThemeDark {
		theme = ThemeDark
	}

	s.mu.Lock()
	s.theme = theme
	s.themeLoaded = true
	s.mu.Unlock()

	if err := s.storage.Put(storage.KeyTheme, struct {
		Mode Theme `json:"mode"`
	}{Mode: theme}); err != nil {
		s.logger.Error("failed to persist theme", slog.Any("error", err))
	}
}
