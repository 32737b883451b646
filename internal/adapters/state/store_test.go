package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()

	config := viper.New()
	config.Set("state.path", path)

	store, err := NewStore(config)
	require.NoError(t, err)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.toml")

	store := newTestStore(t, path)
	require.NoError(t, store.SetSession("s1"))
	require.NoError(t, store.SetPreferences(Preferences{Nickname: "Vilma", ColorMode: "dark", TutorialSeen: true}))

	reloaded := newTestStore(t, path)
	assert.Equal(t, domain.SessionID("s1"), reloaded.Session())
	assert.Equal(t, Preferences{Nickname: "Vilma", ColorMode: "dark", TutorialSeen: true}, reloaded.Preferences())
}

func TestStoreSchemaMismatchDiscardsRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.toml")
	stale := "schema_version = 2\nsession_id = \"old-session\"\n\n[preferences]\nnickname = \"Old\"\n"
	require.NoError(t, os.WriteFile(path, []byte(stale), 0o600))

	store := newTestStore(t, path)

	assert.Equal(t, domain.SessionID(""), store.Session(), "stale session id must be ignored")
	assert.Equal(t, Preferences{}, store.Preferences())
}

func TestStoreSchemaMismatchEqualsMissingRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mismatchPath := filepath.Join(dir, "mismatch.toml")
	require.NoError(t, os.WriteFile(mismatchPath, []byte("schema_version = 99\nsession_id = \"x\"\n"), 0o600))

	fromMismatch := newTestStore(t, mismatchPath)
	fromNothing := newTestStore(t, filepath.Join(dir, "missing.toml"))

	assert.Equal(t, fromNothing.Session(), fromMismatch.Session())
	assert.Equal(t, fromNothing.Preferences(), fromMismatch.Preferences())
}

func TestStoreCorruptRecordTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("not toml {{{"), 0o600))

	store := newTestStore(t, path)
	assert.Equal(t, domain.SessionID(""), store.Session())
}

func TestStoreClearSessionDropsDerivedFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, filepath.Join(t.TempDir(), "state.toml"))
	require.NoError(t, store.SetSession("s1"))
	store.SetCurrentTurn(&domain.NarrativeTurn{Narrative: "n", Options: []domain.DecisionOption{{Label: "a"}}})
	store.SetConsequence("Something happened.")
	store.AppendTransactions([]domain.Transaction{{Description: "Rent", Amount: -600}})

	require.NoError(t, store.ClearSession())

	assert.Equal(t, domain.SessionID(""), store.Session())
	assert.Nil(t, store.CurrentTurn())
	assert.Empty(t, store.Consequence())
	assert.Len(t, store.Transactions(), 1, "clearSession keeps the transaction log")
}

func TestStoreResetGameClearsTransactions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, filepath.Join(t.TempDir(), "state.toml"))
	require.NoError(t, store.SetSession("s1"))
	require.NoError(t, store.SetPreferences(Preferences{Nickname: "Vilma"}))
	store.AppendTransactions([]domain.Transaction{{Description: "Rent", Amount: -600}})

	require.NoError(t, store.ResetGame())

	assert.Equal(t, domain.SessionID(""), store.Session())
	assert.Empty(t, store.Transactions())
	assert.Equal(t, "Vilma", store.Preferences().Nickname, "reset keeps user preferences")
}

func TestStoreTransientsExcludedFromPersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.toml")

	store := newTestStore(t, path)
	require.NoError(t, store.SetSession("s1"))
	store.SetCurrentTurn(&domain.NarrativeTurn{Narrative: "Possibly stale", Options: []domain.DecisionOption{{Label: "a"}}})
	store.AppendTransactions([]domain.Transaction{{Description: "Rent", Amount: -600}})

	reloaded := newTestStore(t, path)
	assert.Equal(t, domain.SessionID("s1"), reloaded.Session())
	assert.Nil(t, reloaded.CurrentTurn(), "narrative cache must not survive a reload")
	assert.Empty(t, reloaded.Transactions())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Possibly stale")
}

func TestStoreCurrentTurnReturnsCopy(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, filepath.Join(t.TempDir(), "state.toml"))
	store.SetCurrentTurn(&domain.NarrativeTurn{Narrative: "original", Options: []domain.DecisionOption{{Label: "a"}}})

	turn := store.CurrentTurn()
	turn.Narrative = "mutated"

	assert.Equal(t, "original", store.CurrentTurn().Narrative)
}

func TestStorePersistedFileMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.toml")
	store := newTestStore(t, path)
	require.NoError(t, store.SetSession("s1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
