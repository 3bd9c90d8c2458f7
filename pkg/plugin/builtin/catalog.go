package builtin

import (
	"sort"

	"github.com/csyork/csbot/pkg/logger"
	"github.com/csyork/csbot/pkg/plugin"
	"github.com/csyork/csbot/pkg/plugins/cron"
	"github.com/csyork/csbot/pkg/plugins/meta"
	"github.com/csyork/csbot/pkg/plugins/usertrack"
)

// Catalog returns compile-time builtin plugin factories by name.
func Catalog() map[string]plugin.Factory {
	return map[string]plugin.Factory{
		meta.Name:      meta.New,
		usertrack.Name: usertrack.New,
		cron.Name:      cron.New,
	}
}

// Names returns sorted builtin plugin names.
func Names() []string {
	catalog := Catalog()
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the configured plugin list into load entries, keeping the
// configured order. An empty list selects every builtin in name order.
// Unknown names are logged and skipped.
func Select(names []string) []plugin.Entry {
	if len(names) == 0 {
		names = Names()
	}

	catalog := Catalog()
	entries := make([]plugin.Entry, 0, len(names))
	for _, name := range names {
		factory, ok := catalog[name]
		if !ok {
			logger.WarnCF("plugins", "Unknown plugin in config: "+name,
				map[string]any{
					"plugin":    name,
					"available": Names(),
				})
			continue
		}
		entries = append(entries, plugin.Entry{Name: name, Factory: factory})
	}
	return entries
}
