package model

// Kind is the contents API entry type
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// ContentNode is one entry of the repository tree as returned by
// GET /repos/{owner}/{repo}/contents/{path}. Children is only populated for
// directories, once the recursive fetch for that directory returned.
type ContentNode struct {
	Name        string         `json:"name"`
	Path        string         `json:"path"`
	SHA         string         `json:"sha"`
	Size        int64          `json:"size"`
	URL         string         `json:"url"`
	HTMLURL     string         `json:"html_url"`
	GitURL      string         `json:"git_url"`
	DownloadURL string         `json:"download_url"`
	Type        Kind           `json:"type"`
	Children    []*ContentNode `json:"children,omitempty"`
}

func (n *ContentNode) IsDir() bool {
	return n.Type == KindDir
}

// NewRoot returns the synthetic directory that owns the top-level entries.
func NewRoot(c RepoComponents, children []*ContentNode) *ContentNode {
	return &ContentNode{
		Name:     c.Repository,
		Path:     c.Dir,
		Type:     KindDir,
		Children: children,
	}
}

// Walk visits n and every descendant depth first. Returning false from fn
// skips the node's children.
func (n *ContentNode) Walk(fn func(node *ContentNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *ContentNode) walk(fn func(node *ContentNode, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Vec3 is a point in scene space
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}
