// Package database edits the player name stored in the osu! stable client
// database (osu!.db). Only the header is decoded; everything after the player
// name is copied through untouched.
package database

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

const (
	stringAbsent  = 0x00
	stringPresent = 0x0b

	// version(int32) + folder count(int32) + account unlocked(bool) + unlock date(int64 ticks)
	headerPrefixSize = 4 + 4 + 1 + 8
)

// Header is the fixed prefix of osu!.db.
type Header struct {
	Version         int32
	FolderCount     int32
	AccountUnlocked bool
	UnlockTicks     int64
	PlayerName      string
	// HasPlayerName is false when the name is encoded as an absent string.
	HasPlayerName bool
}

// Editor performs read-modify-write cycles on osu!.db.
type Editor struct {
	storage *storage.Storage
}

// New creates a new Editor.
func New(storage *storage.Storage) *Editor {
	return &Editor{storage: storage}
}

// ReadHeader decodes the header of the database at path.
func (e *Editor) ReadHeader(path string) (Header, error) {
	f, err := e.storage.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("%w: open %s: %w", domain.ErrDatabaseEditFailed, path, err)
	}
	defer f.Close()

	header, err := readHeader(bufio.NewReader(f))
	if err != nil {
		return Header{}, fmt.Errorf("%w: parse %s: %w", domain.ErrDatabaseEditFailed, path, err)
	}
	return header, nil
}

// SetPlayerName rewrites the database at path with name as the stored player
// name. The file is read fully and closed before being replaced atomically, so
// no handle is held on the original during the rename.
func (e *Editor) SetPlayerName(path, name string) error {
	data, err := e.storage.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", domain.ErrDatabaseEditFailed, path, err)
	}

	r := bufio.NewReader(bytes.NewReader(data))
	header, err := readHeader(r)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrDatabaseEditFailed, path, err)
	}
	header.PlayerName = name
	header.HasPlayerName = true

	err = e.storage.WriteAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		if err := writeHeader(bw, header); err != nil {
			return err
		}
		if _, err := io.Copy(bw, r); err != nil {
			return err
		}
		return bw.Flush()
	})
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrDatabaseEditFailed, path, err)
	}
	return nil
}

func readHeader(r *bufio.Reader) (Header, error) {
	var prefix [headerPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}

	h := Header{
		Version:     int32(binary.LittleEndian.Uint32(prefix[0:4])),
		FolderCount: int32(binary.LittleEndian.Uint32(prefix[4:8])),
		UnlockTicks: int64(binary.LittleEndian.Uint64(prefix[9:17])),
	}
	switch prefix[8] {
	case 0:
		h.AccountUnlocked = false
	case 1:
		h.AccountUnlocked = true
	default:
		return Header{}, fmt.Errorf("invalid boolean byte 0x%02x", prefix[8])
	}

	name, present, err := readString(r)
	if err != nil {
		return Header{}, fmt.Errorf("read player name: %w", err)
	}
	h.PlayerName = name
	h.HasPlayerName = present
	return h, nil
}

func writeHeader(w io.Writer, h Header) error {
	var prefix [headerPrefixSize]byte
	binary.LittleEndian.PutUint32(prefix[0:4], uint32(h.Version))
	binary.LittleEndian.PutUint32(prefix[4:8], uint32(h.FolderCount))
	if h.AccountUnlocked {
		prefix[8] = 1
	}
	binary.LittleEndian.PutUint64(prefix[9:17], uint64(h.UnlockTicks))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if !h.HasPlayerName {
		_, err := w.Write([]byte{stringAbsent})
		return err
	}
	return writeString(w, h.PlayerName)
}

// readString decodes an osu! string: 0x00 for absent, or 0x0b followed by a
// ULEB128 byte length and UTF-8 data.
func readString(r *bufio.Reader) (string, bool, error) {
	marker, err := r.ReadByte()
	if err != nil {
		return "", false, err
	}
	switch marker {
	case stringAbsent:
		return "", false, nil
	case stringPresent:
	default:
		return "", false, fmt.Errorf("invalid string marker 0x%02x", marker)
	}

	length, err := binary.ReadUvarint(r)
	if err != nil {
		return "", false, fmt.Errorf("read string length: %w", err)
	}
	if length > 1<<16 {
		return "", false, errors.New("string length out of range")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", false, fmt.Errorf("read string data: %w", err)
	}
	return string(buf), true, nil
}

func writeString(w io.Writer, s string) error {
	buf := make([]byte, 1, 1+binary.MaxVarintLen64+len(s))
	buf[0] = stringPresent
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	buf = append(buf, s...)
	_, err := w.Write(buf)
	return err
}
