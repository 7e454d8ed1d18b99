package domain

import "testing"

func TestNormalizeServer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", HomeServer},
		{"   ", HomeServer},
		{HomeServer, HomeServer},
		{" akatsuki.gg ", "akatsuki.gg"},
		{"localhost", "localhost"},
	}
	for _, tt := range tests {
		if got := NormalizeServer(tt.in); got != tt.want {
			t.Errorf("NormalizeServer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEndpointValueMapsHomeToEmpty(t *testing.T) {
	if got := EndpointValue(HomeServer); got != "" {
		t.Fatalf("expected empty endpoint for home server, got %q", got)
	}
	if got := EndpointValue(""); got != "" {
		t.Fatalf("expected empty endpoint for empty server, got %q", got)
	}
	if got := EndpointValue("ripple.moe"); got != "ripple.moe" {
		t.Fatalf("expected ripple.moe, got %q", got)
	}
	if got := ServerFromEndpoint(""); got != HomeServer {
		t.Fatalf("expected %q, got %q", HomeServer, got)
	}
}
