package viewer

import "repo-orbit/scene"

type Control struct {
	Action      string `json:"action"`
	Description string `json:"description"`
}

type ColorKey struct {
	Color   string `json:"color"`
	Meaning string `json:"meaning"`
}

// Legend is the static help overlay shown next to the canvas.
type Legend struct {
	Title    string     `json:"title"`
	Controls []Control  `json:"controls"`
	Colors   []ColorKey `json:"colors"`
}

func DefaultLegend() Legend {
	return Legend{
		Title: "Legend & Controls",
		Controls: []Control{
			{Action: "Left Click", Description: "Open or close a folder orb"},
			{Action: "Right Click Orb", Description: "Ask Greptile about the file"},
			{Action: "Shift + Left/Right Click Drag", Description: "Pan camera"},
		},
		Colors: []ColorKey{
			{Color: scene.Collapsed.Color(), Meaning: "Unopened folder"},
			{Color: scene.File.Color(), Meaning: "File"},
			{Color: scene.Expanded.Color(), Meaning: "Opened folder"},
		},
	}
}
