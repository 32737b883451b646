package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

const (
	configName      = "config"
	configType      = "toml"
	statePathKey    = "state.path"
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	stateConfigDir  = ".lifesim"
	stateConfigFile = "state.toml"
	tempFilePattern = ".state-*.toml.tmp"
)

type Preferences struct {
	Nickname     string
	ColorMode    string
	TutorialSeen bool
}

// Store is the process-wide local store: session identity and preferences
// persist to a TOML record under a schema version; the narrative cache,
// consequence text and transaction log are transient and re-derived from
// the server after a reload.
type Store struct {
	path string

	mu           sync.Mutex
	session      domain.SessionID
	prefs        Preferences
	turn         *domain.NarrativeTurn
	consequence  string
	transactions []domain.Transaction
}

var _ ports.GameStateStore = (*Store)(nil)

// NewStore loads the persisted record from the configured path. A record
// with a mismatched schema version is treated exactly like a missing one.
func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, stateConfigDir, stateConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, stateConfigDir))
	cfg.SetDefault(statePathKey, defaultPath)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	path := cfg.GetString(statePathKey)
	if path == "" {
		return nil, errors.New("state path is empty")
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}

	store := &Store{path: filepath.Clean(path)}
	store.load()
	return store, nil
}

// load reads the persisted record. Any read, decode or version failure
// leaves the store at defaults; a stale schema is not an error.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return
	}
	if !file.versionMatches() {
		return
	}

	s.session = domain.SessionID(file.SessionID)
	s.prefs = Preferences{
		Nickname:     file.Preferences.Nickname,
		ColorMode:    file.Preferences.ColorMode,
		TutorialSeen: file.Preferences.TutorialSeen,
	}
}

func (s *Store) Session() domain.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetSession replaces the session id unconditionally; the id's format and
// server-side existence are not validated here.
func (s *Store) SetSession(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = id
	return s.persistLocked()
}

// ClearSession drops the session id together with every field derived from
// it, in one update, so the narrative cache can never point at a stale
// session.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearSessionLocked()
	return s.persistLocked()
}

func (s *Store) clearSessionLocked() {
	s.session = ""
	s.turn = nil
	s.consequence = ""
}

// ResetGame is a superset of ClearSession: it also drops the accumulated
// transaction log, returning the store to the onboarding-entry state.
func (s *Store) ResetGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearSessionLocked()
	s.transactions = nil
	return s.persistLocked()
}

func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Store) SetPreferences(prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = prefs
	return s.persistLocked()
}

// CurrentTurn returns the transiently cached narrative turn, nil when none
// is cached. The cache does not survive a reload; callers must be prepared
// to re-derive the turn from the server.
func (s *Store) CurrentTurn() *domain.NarrativeTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.turn == nil {
		return nil
	}
	turn := *s.turn
	return &turn
}

func (s *Store) SetCurrentTurn(turn *domain.NarrativeTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn == nil {
		s.turn = nil
		return
	}
	copied := *turn
	s.turn = &copied
}

func (s *Store) Consequence() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consequence
}

func (s *Store) SetConsequence(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consequence = text
}

func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

func (s *Store) AppendTransactions(txns []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txns...)
}

// persistLocked re-serializes the whitelisted subset. Only the session id
// and preferences survive a reload; transients are deliberately excluded.
func (s *Store) persistLocked() error {
	file := fileSchema{
		SchemaVersion: currentSchemaVersion,
		SessionID:     string(s.session),
		Preferences: preferencesSchema{
			Nickname:     s.prefs.Nickname,
			ColorMode:    s.prefs.ColorMode,
			TutorialSeen: s.prefs.TutorialSeen,
		},
	}

	if err := os.MkdirAll(filepath.Dir(s.path), stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	cleanup = false
	return nil
}
