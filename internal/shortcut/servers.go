package shortcut

import (
	"sort"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/validator"
)

// builtinServers are private servers the switcher knows out of the box.
var builtinServers = []string{
	"akatsuki.gg",
	"akatsuki.pw",
	"ez-pp.farm",
	"fuquila.net",
	"gatari.pw",
	"halcyon.moe",
	"kawata.pw",
	"kokisu.moe",
	"lemres.de",
	"mamesosu.net",
	"osunolimits.dev",
	"osuokayu.moe",
	"redstar.moe",
	"ripple.moe",
	"scosu.net",
	"seventwentyseven.xyz",
	"ussr.pl",
}

// KnownServers returns the home server, the built-in servers and every valid
// entry of extra, deduplicated and sorted.
func KnownServers(extra ...string) []string {
	v := validator.New()
	seen := map[string]struct{}{domain.HomeServer: {}}
	for _, s := range builtinServers {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		normalized, err := v.NormalizeServer(s)
		if err != nil {
			continue
		}
		seen[normalized] = struct{}{}
	}

	servers := make([]string, 0, len(seen))
	for s := range seen {
		servers = append(servers, s)
	}
	sort.Strings(servers)
	return servers
}
