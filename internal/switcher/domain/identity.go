package domain

import "strings"

// HomeServer is the canonical id of the default (Bancho) server. The client
// itself stores it as an empty CredentialEndpoint.
const HomeServer = "osu.ppy.sh"

// Identity is one login credential pair.
type Identity struct {
	Username string
	Password string
}

// IsEmpty reports whether neither field is set.
func (i Identity) IsEmpty() bool {
	return i.Username == "" && i.Password == ""
}

// NormalizeServer maps the empty id to HomeServer and trims whitespace.
func NormalizeServer(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return HomeServer
	}
	return server
}

// EndpointValue converts a server id into the value written to the client's
// CredentialEndpoint field.
func EndpointValue(server string) string {
	server = NormalizeServer(server)
	if server == HomeServer {
		return ""
	}
	return server
}

// ServerFromEndpoint is the inverse of EndpointValue.
func ServerFromEndpoint(endpoint string) string {
	return NormalizeServer(endpoint)
}
