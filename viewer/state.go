// Package viewer holds the interactive state of the visualizer: which
// directories are open and what the detail panel shows. State changes only
// through the actions dispatched to a Store.
package viewer

import "fmt"

// Phase is the detail panel's query state
type Phase int

const (
	Idle Phase = iota
	Loading
	Displaying
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Displaying:
		return "displaying"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{Idle, Loading, Displaying, Failed} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown panel phase %q", text)
}

// Panel is the detail panel opened by a secondary click. ID changes every time
// a node is selected so that answers for an earlier selection can be told
// apart from answers for the current one.
type Panel struct {
	ID          string `json:"id,omitempty"`
	Open        bool   `json:"open"`
	SelectedURL string `json:"selected_url,omitempty"`
	Phase       Phase  `json:"phase"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Visible reports whether the panel should be drawn.
func (p Panel) Visible() bool {
	return p.Open && p.SelectedURL != ""
}

type State struct {
	Expanded map[string]struct{} `json:"-"`
	Panel    Panel               `json:"panel"`
}

func NewState() State {
	return State{Expanded: map[string]struct{}{}}
}

func (s State) IsExpanded(sha string) bool {
	_, ok := s.Expanded[sha]
	return ok
}

// ExpandedSHAs lists the open directories in no particular order.
func (s State) ExpandedSHAs() []string {
	out := make([]string, 0, len(s.Expanded))
	for sha := range s.Expanded {
		out = append(out, sha)
	}
	return out
}

func (s State) clone() State {
	c := State{
		Expanded: make(map[string]struct{}, len(s.Expanded)),
		Panel:    s.Panel,
	}
	for sha := range s.Expanded {
		c.Expanded[sha] = struct{}{}
	}
	return c
}
