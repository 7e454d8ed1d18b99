package database

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

var beatmapTail = []byte{0x02, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef, 0x0b, 0x03, 'a', 'b', 'c'}

func buildDatabase(t *testing.T, name *string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(20240101)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(42)))
	buf.WriteByte(1)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int64(638400000000000000)))
	if name == nil {
		buf.WriteByte(stringAbsent)
	} else {
		require.NoError(t, writeString(&buf, *name))
	}
	buf.Write(beatmapTail)
	return buf.Bytes()
}

func newEditor(t *testing.T, content []byte) (*Editor, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if content != nil {
		require.NoError(t, afero.WriteFile(fs, "/osu/osu!.db", content, 0o644))
	}
	return New(storage.New(fs)), fs
}

func TestSetPlayerNameReplacesName(t *testing.T) {
	old := "peppy"
	editor, fs := newEditor(t, buildDatabase(t, &old))

	require.NoError(t, editor.SetPlayerName("/osu/osu!.db", "ユーザー"))

	header, err := editor.ReadHeader("/osu/osu!.db")
	require.NoError(t, err)
	assert.Equal(t, "ユーザー", header.PlayerName)
	assert.True(t, header.HasPlayerName)
	assert.Equal(t, int32(20240101), header.Version)
	assert.Equal(t, int32(42), header.FolderCount)
	assert.True(t, header.AccountUnlocked)
	assert.Equal(t, int64(638400000000000000), header.UnlockTicks)

	data, err := afero.ReadFile(fs, "/osu/osu!.db")
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, beatmapTail), "bytes after the header must be preserved")
}

func TestSetPlayerNameFromAbsentName(t *testing.T) {
	editor, _ := newEditor(t, buildDatabase(t, nil))

	header, err := editor.ReadHeader("/osu/osu!.db")
	require.NoError(t, err)
	assert.False(t, header.HasPlayerName)

	require.NoError(t, editor.SetPlayerName("/osu/osu!.db", "cookiezi"))
	header, err = editor.ReadHeader("/osu/osu!.db")
	require.NoError(t, err)
	assert.Equal(t, "cookiezi", header.PlayerName)
}

func TestSetPlayerNameEmpty(t *testing.T) {
	old := "peppy"
	editor, _ := newEditor(t, buildDatabase(t, &old))

	require.NoError(t, editor.SetPlayerName("/osu/osu!.db", ""))
	header, err := editor.ReadHeader("/osu/osu!.db")
	require.NoError(t, err)
	assert.True(t, header.HasPlayerName)
	assert.Equal(t, "", header.PlayerName)
}

func TestSetPlayerNameMissingFile(t *testing.T) {
	editor, _ := newEditor(t, nil)

	err := editor.SetPlayerName("/osu/osu!.db", "x")
	require.ErrorIs(t, err, domain.ErrDatabaseEditFailed)
	assert.Contains(t, err.Error(), "/osu/osu!.db")
}

func TestSetPlayerNameCorruptedKeepsOriginal(t *testing.T) {
	corrupt := []byte{0x01, 0x02, 0x03}
	editor, fs := newEditor(t, corrupt)

	err := editor.SetPlayerName("/osu/osu!.db", "x")
	require.ErrorIs(t, err, domain.ErrDatabaseEditFailed)

	data, readErr := afero.ReadFile(fs, "/osu/osu!.db")
	require.NoError(t, readErr)
	assert.Equal(t, corrupt, data)
}

func TestReadHeaderRejectsBadStringMarker(t *testing.T) {
	data := buildDatabase(t, nil)
	data[headerPrefixSize] = 0x07
	editor, _ := newEditor(t, data)

	_, err := editor.ReadHeader("/osu/osu!.db")
	require.ErrorIs(t, err, domain.ErrDatabaseEditFailed)
}
