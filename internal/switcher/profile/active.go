package profile

import (
	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

// ActiveSlot is the identity written into the client's per-user config.
type ActiveSlot struct {
	doc *document
}

// LoadActive parses the per-user config at path.
func LoadActive(s *storage.Storage, path string) (*ActiveSlot, error) {
	doc, err := loadDocument(s, path)
	if err != nil {
		return nil, err
	}
	return &ActiveSlot{doc: doc}, nil
}

// Path returns the file backing this slot.
func (a *ActiveSlot) Path() string {
	return a.doc.path
}

// Server returns the canonical id of the server the client currently logs into.
func (a *ActiveSlot) Server() string {
	return domain.ServerFromEndpoint(value(a.doc.file.Section(""), keyEndpoint))
}

// Identity returns the stored credentials.
func (a *ActiveSlot) Identity() domain.Identity {
	return readIdentity(a.doc.file.Section(""))
}

// Set replaces the credentials and endpoint. The home server is written as an
// empty endpoint.
func (a *ActiveSlot) Set(server string, id domain.Identity) {
	sec := a.doc.file.Section("")
	writeIdentity(sec, id)
	sec.Key(keyEndpoint).SetValue(domain.EndpointValue(server))
}

// Save persists the slot atomically.
func (a *ActiveSlot) Save(s *storage.Storage) error {
	return a.doc.save(s)
}
