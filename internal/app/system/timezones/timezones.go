// Package timezones serves a curated list of IANA time zones for the
// student profile picker, loaded once from an embedded JSON file.
package timezones

import (
	"embed"
	"encoding/json"
	"sync"
)

//go:embed timezonedata/timezones.json
var fs embed.FS

type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region,omitempty"`
}

var (
	loadOnce sync.Once
	zones    []Zone
	byID     map[string]Zone
	loadErr  error
)

func load() {
	loadOnce.Do(func() {
		data, err := fs.ReadFile("timezonedata/timezones.json")
		if err != nil {
			loadErr = err
			return
		}

		var list []Zone
		if err := json.Unmarshal(data, &list); err != nil {
			loadErr = err
			return
		}

		zones = list
		byID = make(map[string]Zone, len(list))
		for _, z := range list {
			byID[z.ID] = z
		}
	})
}

// Load forces the embedded JSON to be parsed. Call it at startup to
// fail fast; the accessors below load lazily otherwise.
func Load() error {
	load()
	return loadErr
}

// All returns the curated zones in file order.
func All() ([]Zone, error) {
	load()
	if loadErr != nil {
		return nil, loadErr
	}
	return zones, nil
}

// Label returns the display label for an ID, or the ID itself when the
// zone is not in the curated list.
func Label(id string) string {
	load()
	if loadErr != nil {
		return id
	}
	if z, ok := byID[id]; ok && z.Label != "" {
		return z.Label
	}
	return id
}

// Valid reports whether the ID is in the curated list.
func Valid(id string) bool {
	load()
	if loadErr != nil {
		return false
	}
	_, ok := byID[id]
	return ok
}
