// Package prefs owns the per-installation settings record and the
// onboarding gate derived from it.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/kv"
	"budget/internal/log"
)

var (
	ErrAlreadyLoaded    = errors.New("prefs: already loaded")
	ErrAlreadyOnboarded = errors.New("prefs: onboarding already completed")
)

// State is the onboarding gate.
type State int

const (
	Loading State = iota
	NotOnboarded
	Onboarded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case NotOnboarded:
		return "not_onboarded"
	case Onboarded:
		return "onboarded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Saver queues a value for durable storage under key.
type Saver interface {
	Save(key string, value any) error
}

type Store struct {
	mu       sync.RWMutex
	settings core.Settings
	loaded   bool

	saver  Saver
	logger *log.Logger
}

// New returns a store holding defaults in the Loading state.
func New(saver Saver, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		settings: core.DefaultSettings(),
		saver:    saver,
		logger:   logger.WithComponent(log.ComponentPrefs),
	}
}

// Load reads the stored record once. Missing fields, a missing record and
// unreadable data all fall back to defaults.
func (s *Store) Load(ctx context.Context, store kv.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return ErrAlreadyLoaded
	}
	s.loaded = true

	raw, found, err := store.Get(ctx, kv.KeySettings)
	switch {
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to read settings, using defaults", log.FieldOperation, log.OpLoad, log.FieldError, err)
		s.settings = core.DefaultSettings()
	case !found:
		s.logger.InfoContext(ctx, "No stored settings, using defaults")
		s.settings = core.DefaultSettings()
	default:
		settings, err := core.MergeStored(raw)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to decode settings, using defaults", log.FieldOperation, log.OpLoad, log.FieldError, err)
		}
		s.settings = settings
	}
	return nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.loaded:
		return Loading
	case s.settings.IsOnboarded:
		return Onboarded
	default:
		return NotOnboarded
	}
}

// Settings returns a copy of the current record.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

func (s *Store) PrincipalFund() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.PrincipalFund
}

// Update merges patch over the record and persists the whole record. Enum
// fields are stored as given.
func (s *Store) Update(patch core.SettingsPatch) core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(patch)
}

// ToggleTheme flips light and dark. A system theme becomes light.
func (s *Store) ToggleTheme() core.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings.Theme.Toggle()
	s.applyLocked(core.SettingsPatch{Theme: &next})
	return next
}

// CompleteOnboarding saves the profile gathered by the onboarding flow and
// opens the gate, in one update.
func (s *Store) CompleteOnboarding(p core.Profile) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.IsOnboarded {
		return s.settings.Clone(), ErrAlreadyOnboarded
	}
	patch := core.ProfilePatch(p)
	onboarded := true
	theme := core.ThemeLight
	patch.IsOnboarded = &onboarded
	patch.Theme = &theme

	settings := s.applyLocked(patch)
	s.logger.Info("Onboarding completed", "language", p.Language, "currency", p.Currency)
	return settings, nil
}

// SaveProfile stores profile edits from the settings screen. The onboarding
// flag and theme are left alone.
func (s *Store) SaveProfile(p core.Profile) core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(core.ProfilePatch(p))
}

func (s *Store) applyLocked(patch core.SettingsPatch) core.Settings {
	s.settings = patch.Apply(s.settings)
	snapshot := s.settings.Clone()
	if err := s.saver.Save(kv.KeySettings, snapshot); err != nil {
		s.logger.Warn("Settings not queued for persistence", log.FieldError, err)
	}
	return snapshot
}
