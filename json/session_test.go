package json_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocandeias/idaia"
	sessionjson "github.com/pedrocandeias/idaia/json"
)

func sampleSession() *idaia.Session {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &idaia.Session{
		ID:        "doc-1",
		CreatedAt: now,
		UpdatedAt: now,
		Turns: []idaia.Turn{
			{Role: idaia.RoleUser, Text: "make a box", Time: now},
			{Role: idaia.RoleAssistant, Text: "Created box Box", Time: now},
		},
		Objects: []idaia.ObjectRef{
			{Name: "Box", Kind: idaia.Box},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	want := sampleSession()

	require.NoError(t, sessionjson.Save(path, want))

	got, err := sessionjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestUnmarshalSession_UnknownVersion(t *testing.T) {
	t.Parallel()
	_, err := sessionjson.UnmarshalSession([]byte(`{"version": 2, "id": "x"}`))
	assert.Error(t, err)
}

func TestUnmarshalSession_InvalidRole(t *testing.T) {
	t.Parallel()
	_, err := sessionjson.UnmarshalSession([]byte(`{
		"version": 1, "id": "x",
		"turns": [{"role": "system", "text": "hi"}]
	}`))
	assert.Error(t, err)
}

func TestUnmarshalSession_InvalidKind(t *testing.T) {
	t.Parallel()
	_, err := sessionjson.UnmarshalSession([]byte(`{
		"version": 1, "id": "x",
		"objects": [{"name": "Blob", "kind": "blob"}]
	}`))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := sessionjson.Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
