package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Zone string `json:"zone"`
	Tick uint64 `json:"tick"`
}

var backends = []string{BackendMemory, BackendSQLite, BackendBadger}

func openBackend(t *testing.T, name string) Store {
	t.Helper()
	var path string
	switch name {
	case BackendSQLite:
		path = filepath.Join(t.TempDir(), "records.db")
	case BackendBadger:
		path = filepath.Join(t.TempDir(), "badger")
	}
	st, err := Open(name, path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBackendsRoundTrip(t *testing.T) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			st := openBackend(t, name)

			var missing testRecord
			found, err := st.Get("safety/E1S1", &missing)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, st.Set("safety/E1S1", testRecord{Zone: "E1S1", Tick: 40}))

			var got testRecord
			found, err = st.Get("safety/E1S1", &got)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, testRecord{Zone: "E1S1", Tick: 40}, got)

			// Overwrite keeps only the newest value.
			require.NoError(t, st.Set("safety/E1S1", testRecord{Zone: "E1S1", Tick: 90}))
			_, err = st.Get("safety/E1S1", &got)
			require.NoError(t, err)
			assert.Equal(t, uint64(90), got.Tick)

			require.NoError(t, st.Delete("safety/E1S1"))
			found, err = st.Get("safety/E1S1", &got)
			require.NoError(t, err)
			assert.False(t, found)

			// Deleting again is not an error.
			assert.NoError(t, st.Delete("safety/E1S1"))
		})
	}
}

func TestBackendsListKeysByPrefix(t *testing.T) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			st := openBackend(t, name)

			for _, key := range []string{
				"transit/bob", "safety/E2S0", "safety/E1S1", "access/E1S1|E2S0",
			} {
				require.NoError(t, st.Set(key, testRecord{Tick: 1}))
			}

			keys, err := st.Keys("safety/")
			require.NoError(t, err)
			assert.Equal(t, []string{"safety/E1S1", "safety/E2S0"}, keys)

			all, err := st.Keys("")
			require.NoError(t, err)
			assert.Len(t, all, 4)

			none, err := st.Keys("profit/")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open("etcd", "")
	assert.Error(t, err)

	// Empty backend defaults to memory.
	st, err := Open("", "")
	require.NoError(t, err)
	assert.NoError(t, st.Close())
}
