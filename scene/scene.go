// Package scene derives the drawable node graph from a fetched repository
// tree and the set of expanded directories.
package scene

import (
	"fmt"

	"repo-orbit/helpers"
	"repo-orbit/layout"
	"repo-orbit/model"
)

// NodeState is the visual state of a drawn node
type NodeState int

const (
	Collapsed NodeState = iota
	Expanded
	File
)

func (s NodeState) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	default:
		return "file"
	}
}

// Color is the node and particle color for the state
func (s NodeState) Color() string {
	switch s {
	case Collapsed:
		return "blue"
	case Expanded:
		return "orange"
	default:
		return "green"
	}
}

func (s NodeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *NodeState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "collapsed":
		*s = Collapsed
	case "expanded":
		*s = Expanded
	case "file":
		*s = File
	default:
		return fmt.Errorf("unknown node state %q", text)
	}
	return nil
}

const (
	LabelColor      = "white"
	LabelFontSize   = 0.35
	LabelOffset     = 1.0
	ConnectionColor = "white"
	TitleFontSize   = 45.0
	TitleHeight     = 350.0
)

// Expander reports whether a directory, identified by its SHA, is open.
type Expander interface {
	IsExpanded(sha string) bool
}

// Label is a text anchored in the scene
type Label struct {
	Text     string     `json:"text"`
	Position model.Vec3 `json:"position"`
	FontSize float64    `json:"font_size"`
	Color    string     `json:"color"`
}

type Node struct {
	ID       string     `json:"id"`
	Parent   string     `json:"parent,omitempty"`
	SHA      string     `json:"sha"`
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Kind     model.Kind `json:"kind"`
	State    NodeState  `json:"state"`
	Color    string     `json:"color"`
	Depth    int        `json:"depth"`
	Position model.Vec3 `json:"position"`
	Label    Label      `json:"label"`
	HTMLURL  string     `json:"html_url"`
	Size     string     `json:"size,omitempty"`
}

// Connection is the line segment between a drawn parent and child
type Connection struct {
	From  string     `json:"from"`
	To    string     `json:"to"`
	Start model.Vec3 `json:"start"`
	End   model.Vec3 `json:"end"`
	Color string     `json:"color"`
}

type Scene struct {
	Title       Label        `json:"title"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Resolve picks the visual state of n for the given expanded set.
func Resolve(n *model.ContentNode, expanded Expander) NodeState {
	if !n.IsDir() {
		return File
	}
	if expanded != nil && expanded.IsExpanded(n.SHA) {
		return Expanded
	}
	return Collapsed
}

// Build lays out and collects every node that is visible: the root's direct
// children, and the children of any drawn directory that is expanded. The
// synthetic root itself is never drawn.
func Build(root *model.ContentNode, title string, expanded Expander) Scene {
	s := Scene{
		Title: Label{
			Text:     title,
			Position: model.Vec3{Y: TitleHeight},
			FontSize: TitleFontSize,
			Color:    LabelColor,
		},
		Nodes:       []Node{},
		Connections: []Connection{},
	}
	if root == nil {
		return s
	}

	b := builder{scene: &s, expanded: expanded}
	b.group(root.Children, 0, model.Vec3{}, nil)
	return s
}

type builder struct {
	scene    *Scene
	expanded Expander
}

func (b *builder) group(children []*model.ContentNode, depth int, origin model.Vec3, parent *Node) {
	positions := layout.Siblings(len(children), depth, origin)
	for i, child := range children {
		pos := positions[i]
		state := Resolve(child, b.expanded)

		node := Node{
			ID:       child.Path,
			SHA:      child.SHA,
			Name:     child.Name,
			Path:     child.Path,
			Kind:     child.Type,
			State:    state,
			Color:    state.Color(),
			Depth:    depth,
			Position: pos,
			Label: Label{
				Text:     child.Name,
				Position: pos.Add(model.Vec3{Y: LabelOffset}),
				FontSize: LabelFontSize,
				Color:    LabelColor,
			},
			HTMLURL: child.HTMLURL,
		}
		if !child.IsDir() {
			node.Size = helpers.FormatBytes(child.Size)
		}
		if parent != nil {
			node.Parent = parent.ID
			b.scene.Connections = append(b.scene.Connections, Connection{
				From:  parent.ID,
				To:    node.ID,
				Start: parent.Position,
				End:   pos,
				Color: ConnectionColor,
			})
		}
		b.scene.Nodes = append(b.scene.Nodes, node)

		if state == Expanded {
			b.group(child.Children, depth+1, pos, &node)
		}
	}
}

// Find returns the drawn node with the given id.
func (s Scene) Find(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
