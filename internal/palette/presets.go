package palette

import (
	"strings"
	"unicode"
)

// Preset is a named background color
type Preset struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var presets = []Preset{
	{"Sage Green", "#b8d4a0", "Fresh sage green"},
	{"Dusty Rose", "#dcc6d0", "Soft dusty rose"},
	{"Warm Sand", "#e6dcc6", "Golden warm sand"},
	{"Cool Mist", "#b3d9f0", "Bright cool blue"},
	{"Lavender Dream", "#dcc6eb", "Rich lavender purple"},
	{"Earthen Clay", "#dccdc3", "Warm earthen clay"},
	{"Ocean Teal", "#b3e0e0", "Vibrant ocean teal"},
	{"Morning Amber", "#e6dccf", "Golden morning amber"},
	{"Forest Green", "#c0ddc0", "Deep forest green"},
	{"Stone Gray", "#e0e0e0", "Modern stone gray"},
	{"Sunset Peach", "#e6ccb3", "Warm sunset peach"},
	{"Twilight Blue", "#b8cde1", "Deep twilight blue"},
	{"Burnt Sienna", "#a0522d", "Warm burnt sienna"},
	{"Forest Teal", "#2f4f4f", "Deep forest teal"},
	{"Clay Terracotta", "#cd853f", "Soft clay terracotta"},
	{"Slate Gray", "#708090", "Modern slate gray"},
	{"Plum Wine", "#705263", "Muted plum wine"},
	{"Seafoam Mint", "#7ba984", "Fresh seafoam mint"},
	{"Copper Penny", "#ad6f69", "Subtle copper penny"},
	{"Indigo Dust", "#4b0082", "Softened indigo dust"},
}

// Presets returns a copy of the built-in background presets
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by name, ignoring case, spaces, dashes and underscores
func Lookup(name string) (Preset, bool) {
	key := normalize(name)
	for _, p := range presets {
		if normalize(p.Name) == key {
			return p, true
		}
	}
	return Preset{}, false
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
