package profile

import (
	"sort"
)

// DefaultName selects the profile used when none is requested.
const DefaultName = "default"

// Profile is a named quality preset.
type Profile struct {
	Name       string
	Quality    int    // encoding quality 1-100
	Background string // hex colour transparent pixels are flattened onto
}

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:       "default",
		Quality:    80,
		Background: "#ffffff",
	},
	"web": {
		Name:       "web",
		Quality:    72,
		Background: "#ffffff",
	},
	"archive": {
		Name:       "archive",
		Quality:    92,
		Background: "#ffffff",
	},
	"tiny": {
		Name:       "tiny",
		Quality:    50,
		Background: "#ffffff",
	},
}

// Get returns a profile by name. Falls back to default if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Names lists the built-in profiles ordered by quality, lowest first.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return profiles[names[i]].Quality < profiles[names[j]].Quality
	})
	return names
}
