package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"

	"github.com/spf13/viper"
)

// Settings document keys.
const (
	KeyUnits         = "units"
	KeyFrequencyUnit = "frequency_unit"
	KeyLogInterval   = "log_interval"
	KeySensorMap     = "sensor_map"
	KeyWindowWidth   = "window_width"
	KeyWindowHeight  = "window_height"
)

const (
	DefaultUnits         = models.Celsius
	DefaultFrequencyUnit = models.Minutes
	DefaultLogInterval   = 5
)

func settingsDefaults() map[string]any {
	return map[string]any{
		KeyUnits:         string(DefaultUnits),
		KeyFrequencyUnit: string(DefaultFrequencyUnit),
		KeyLogInterval:   DefaultLogInterval,
		KeySensorMap:     map[string]string{},
		KeyWindowWidth:   480,
		KeyWindowHeight:  258,
	}
}

// Store is the persisted user settings document. Values set at runtime live
// in memory until Save.
type Store struct {
	mu     sync.Mutex
	v      *viper.Viper
	path   string
	log    *logger.Logger
	ensure func() error
}

type Option func(*Store)

// WithLogFile makes Save create the temperature log before writing.
func WithLogFile(ensure func() error) Option {
	return func(s *Store) { s.ensure = ensure }
}

func NewStore(path string, log *logger.Logger, opts ...Option) *Store {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for k, val := range settingsDefaults() {
		v.SetDefault(k, val)
	}

	s := &Store{v: v, path: path, log: log.Component("settings")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Load merges the file over the defaults. A missing or unreadable document
// is logged and the defaults stay in effect.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		s.log.Infow("settings_not_found", "path", s.path)
		return
	}
	if err := s.v.ReadInConfig(); err != nil {
		s.log.Warnw("settings_load_failed", "path", s.path, "err", err)
		return
	}
	s.log.Infow("settings_loaded", "path", s.path)
}

// Get returns the current value for key, or its default.
func (s *Store) Get(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Get(key)
}

// Set changes key in memory only.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

func (s *Store) Units() models.Units {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := models.Units(s.v.GetString(KeyUnits)); u.Valid() {
		return u
	}
	return DefaultUnits
}

func (s *Store) FrequencyUnit() models.FrequencyUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := models.FrequencyUnit(s.v.GetString(KeyFrequencyUnit)); f.Valid() {
		return f
	}
	return DefaultFrequencyUnit
}

// LogInterval is the sampling interval in FrequencyUnit units.
func (s *Store) LogInterval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.v.GetInt(KeyLogInterval); n > 0 {
		return n
	}
	return DefaultLogInterval
}

// Roles returns the role assignment from sensor_map. Unknown roles and
// empty sensor ids are dropped.
func (s *Store) Roles() models.RoleAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.RoleAssignment{}
	for k, id := range s.v.GetStringMapString(KeySensorMap) {
		if r := models.Role(k); r.Known() && id != "" {
			out[r] = id
		}
	}
	return out
}

// SetRoles replaces sensor_map in memory.
func (s *Store) SetRoles(a models.RoleAssignment) {
	m := make(map[string]string, len(a))
	for r, id := range a {
		m[string(r)] = id
	}
	s.Set(KeySensorMap, m)
}

// Save creates the data directory and the log file if needed, then writes
// the whole document. Unknown keys keep their values; viper stores key
// names in lower case.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if s.ensure != nil {
		if err := s.ensure(); err != nil {
			return fmt.Errorf("ensure log file: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		s.log.Errorw("settings_save_failed", "path", s.path, "err", err)
		return fmt.Errorf("write settings %q: %w", s.path, err)
	}
	return nil
}
