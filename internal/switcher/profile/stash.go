package profile

import (
	"sort"

	"gopkg.in/ini.v1"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

// Stash archives identities for servers that are not currently active, one
// section per server id.
type Stash struct {
	doc *document
}

// StashFileMode is the mode of a newly created stash. It holds passwords for
// every inactive server.
const StashFileMode = 0o600

// LoadStash parses the stash file at path.
func LoadStash(s *storage.Storage, path string) (*Stash, error) {
	doc, err := loadDocument(s, path)
	if err != nil {
		return nil, err
	}
	return &Stash{doc: doc}, nil
}

// Path returns the file backing the stash.
func (st *Stash) Path() string {
	return st.doc.path
}

// Get returns the identity archived for server.
func (st *Stash) Get(server string) (domain.Identity, bool) {
	sec, err := st.doc.file.GetSection(domain.NormalizeServer(server))
	if err != nil {
		return domain.Identity{}, false
	}
	return readIdentity(sec), true
}

// Put archives id under server, replacing any previous entry. Empty
// identities are stored as explicit empty entries.
func (st *Stash) Put(server string, id domain.Identity) {
	writeIdentity(st.doc.file.Section(domain.NormalizeServer(server)), id)
}

// Servers lists the stashed server ids in lexical order.
func (st *Stash) Servers() []string {
	var servers []string
	for _, name := range st.doc.file.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		servers = append(servers, name)
	}
	sort.Strings(servers)
	return servers
}

// Save persists the stash atomically.
func (st *Stash) Save(s *storage.Storage) error {
	return st.doc.save(s)
}
