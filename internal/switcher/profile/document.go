// Package profile reads and writes the two key/value stores that hold
// credentials: the client's per-user config (the active slot) and the
// switcher's stash of inactive identities.
package profile

import (
	"fmt"
	"io"

	"gopkg.in/ini.v1"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

const (
	keyUsername = "Username"
	keyPassword = "Password"
	keyEndpoint = "CredentialEndpoint"
)

// Values are kept byte for byte: passwords may contain '#', ';' and ':', may
// be wrapped in quotes or end with a backslash. Server ids contain dots, which
// must not be read as nested sections.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	KeyValueDelimiters:      "=",
	ChildSectionDelimiter:   "/",
}

func init() {
	// The client writes "Key = Value" without column alignment.
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

type document struct {
	path string
	file *ini.File
}

func loadDocument(s *storage.Storage, path string) (*document, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfigCorrupted, path, err)
	}
	return &document{path: path, file: file}, nil
}

func (d *document) save(s *storage.Storage) error {
	err := s.WriteAtomic(d.path, func(w io.Writer) error {
		_, err := d.file.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfigWriteFailed, d.path, err)
	}
	return nil
}

// value reads a key without creating it.
func value(sec *ini.Section, key string) string {
	if sec == nil || !sec.HasKey(key) {
		return ""
	}
	return sec.Key(key).String()
}

func readIdentity(sec *ini.Section) domain.Identity {
	return domain.Identity{
		Username: value(sec, keyUsername),
		Password: value(sec, keyPassword),
	}
}

func writeIdentity(sec *ini.Section, id domain.Identity) {
	sec.Key(keyUsername).SetValue(id.Username)
	sec.Key(keyPassword).SetValue(id.Password)
}
