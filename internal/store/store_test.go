package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slate/pkg/slate"
)

func TestOpenMissingFileStartsFreshProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards", "retro.slate")
	p, err := Open(path, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "retro", p.Metadata.Name)
	require.NotNil(t, p.Whiteboard)
	assert.Len(t, p.Whiteboard.Layers, 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.slate")
	s := New(path, slate.SaveOptions{Compression: true}, zerolog.Nop())

	p := slate.NewProject("demo")
	wb := p.EnsureWhiteboard()
	wb.Strokes = append(wb.Strokes, slate.Stroke{
		ID:      slate.NewID(),
		Points:  []slate.Point{{X: 1, Y: 1}, {X: 2, Y: 2}},
		Color:   0xFF0000FF,
		Size:    3,
		Opacity: 1,
		LayerID: wb.Layers[0].ID,
	})
	require.NoError(t, s.Save(p))

	loaded, err := Open(path, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Metadata.Name)
	assert.Len(t, loaded.Whiteboard.Strokes, 1)
}

func TestSaveWithoutPathFails(t *testing.T) {
	s := New("", slate.SaveOptions{}, zerolog.Nop())
	assert.Error(t, s.Save(slate.NewProject("x")))
}

func TestEncryptedStoreRequiresPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.slate")
	s := New(path, slate.SaveOptions{
		Encryption: slate.EncryptionOptions{Enabled: true, Password: "pw"},
	}, zerolog.Nop())
	require.NoError(t, s.Save(slate.NewProject("secret")))

	_, err := Open(path, "", zerolog.Nop())
	assert.ErrorIs(t, err, slate.ErrPasswordRequired)

	p, err := Open(path, "pw", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "secret", p.Metadata.Name)
}
