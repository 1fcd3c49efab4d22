package store_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-importer/examples/gamedata"
	"notion-importer/internal/store"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    store.Format
		wantErr bool
	}{
		{in: "json", want: store.FormatJSON},
		{in: "yaml", want: store.FormatYAML},
		{in: "toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := store.ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStore_Prepare(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(root, store.FormatJSON)

	err := s.Prepare("assets/items", false)
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, s.Prepare("assets/items", true))
	assert.DirExists(t, filepath.Join(root, "assets", "items"))
	require.NoError(t, s.Prepare("assets/items", false))

	require.NoError(t, os.WriteFile(filepath.Join(root, "plain"), []byte("x"), 0o644))
	require.Error(t, s.Prepare("plain", false))
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, format := range []store.Format{store.FormatJSON, store.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			root := t.TempDir()
			s := store.NewFileStore(root, format)
			require.NoError(t, s.Prepare("assets", true))

			var missing gamedata.ItemTable

			found, err := s.Load("assets/Items", &missing)
			require.NoError(t, err)
			assert.False(t, found)

			in := &gamedata.ItemTable{Version: 2, Items: []gamedata.Item{
				{Name: "Sword", Price: 10, Rarity: gamedata.Rare, Traits: gamedata.Consumable | gamedata.Tradable},
				{Name: "Bow", Aliases: []string{"Longbow"}},
			}}
			require.NoError(t, s.Save("assets/Items", in))
			assert.FileExists(t, filepath.Join(root, "assets", "Items"+format.Ext()))

			var out gamedata.ItemTable

			found, err = s.Load("assets/Items", &out)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, *in, out)

			entries, err := os.ReadDir(filepath.Join(root, "assets"))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp files are cleaned up")
		})
	}
}

func TestFileStore_LoadByteOrderMark(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(root, store.FormatJSON)

	data := append([]byte{0xEF, 0xBB, 0xBF}, `{"test_string":"hi","test_int":3}`...)
	require.NoError(t, os.WriteFile(filepath.Join(root, "Sample.json"), data, 0o644))

	var out gamedata.Sample

	found, err := s.Load("Sample", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, gamedata.Sample{TestString: "hi", TestInt: 3}, out)
}
