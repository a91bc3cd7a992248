package flagsteg

import (
	"path/filepath"
	"testing"

	"github.com/bodgit/flagsteg/transgender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *FlagDB {
	t.Helper()
	db, err := NewFlagDB(filepath.Join(tempDir(t), "flagsteg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreLoad(t *testing.T) {
	db := newTestDB(t)
	m := New(transgender.New(64, 20), db, discard())

	id, err := m.Store("greeting", []byte("hello"))
	require.NoError(t, err)

	payload, err := m.Load("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(payload))

	// Storing again under the same name replaces the flag
	id2, err := m.Store("greeting", []byte("goodbye"))
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	payload, err = m.Load("greeting")
	require.NoError(t, err)
	assert.Equal(t, "goodbye", string(payload))

	payload, err = m.Load("missing")
	require.NoError(t, err)
	assert.Nil(t, payload)

	b, err := db.Image("greeting")
	require.NoError(t, err)
	assert.True(t, transgender.New(64, 20).IsValid(b))
}

func TestStoreTooBig(t *testing.T) {
	m := New(transgender.New(10, 10), newTestDB(t), discard())

	_, err := m.Store("big", make([]byte, 100))
	var ce *transgender.CapacityError
	assert.ErrorAs(t, err, &ce)

	entries, err := m.db.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList(t *testing.T) {
	db := newTestDB(t)
	m := New(transgender.New(64, 20), db, discard())

	for _, name := range []string{"b", "a", "c"} {
		_, err := m.Store(name, []byte(name))
		require.NoError(t, err)
	}

	entries, err := db.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, entries[i].Name)
		assert.Equal(t, "Transgender", entries[i].Style)
		assert.Equal(t, 64, entries[i].Width)
		assert.Equal(t, 20, entries[i].Height)
		assert.Len(t, entries[i].SHA1, 40)
		assert.NotZero(t, entries[i].Size)
	}
}

func TestNoDB(t *testing.T) {
	m := New(transgender.Default(), nil, discard())

	_, err := m.Store("x", nil)
	assert.Equal(t, errNoDB, err)
	_, err = m.Load("x")
	assert.Equal(t, errNoDB, err)
}
