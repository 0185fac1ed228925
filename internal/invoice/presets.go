package invoice

import (
	"sort"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// DefaultPreset is used when a request does not name one.
const DefaultPreset = "a4"

// Preset is a fixed render target for exporting a document. Dimensions are in pixels at DPI.
// A zero height means the medium is continuous.
type Preset struct {
	Name   string `json:"name"`
	DPI    int    `json:"dpi"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var presets = map[string]Preset{
	"a4":           {Name: "a4", DPI: 96, Width: 794, Height: 1123},
	"a4_hd":        {Name: "a4_hd", DPI: 300, Width: 2480, Height: 3508},
	"letter":       {Name: "letter", DPI: 96, Width: 816, Height: 1056},
	"thermal_80mm": {Name: "thermal_80mm", DPI: 203, Width: 640, Height: 0},
}

// LookupPreset resolves name, falling back to DefaultPreset when name is empty.
func LookupPreset(name string) (Preset, error) {
	if name == "" {
		name = DefaultPreset
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown render preset").
			WithDetails(map[string]any{"preset": name, "allowed": PresetNames()})
	}
	return p, nil
}

// PresetNames lists the known presets in name order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
