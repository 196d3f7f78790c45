package viewer

import "repo-orbit/model"

// Action is one discrete state transition. apply reports whether the state
// changed.
type Action interface {
	apply(s *State, newID func() string) bool
}

// ToggleDir is a primary click on a node. Only directories react to it.
type ToggleDir struct {
	SHA  string
	Kind model.Kind
}

func (a ToggleDir) apply(s *State, _ func() string) bool {
	if a.Kind != model.KindDir || a.SHA == "" {
		return false
	}
	if _, ok := s.Expanded[a.SHA]; ok {
		delete(s.Expanded, a.SHA)
	} else {
		s.Expanded[a.SHA] = struct{}{}
	}
	return true
}

// Select is a secondary click on any node: it opens a fresh detail panel for
// the node's web URL.
type Select struct {
	HTMLURL string
}

func (a Select) apply(s *State, newID func() string) bool {
	if a.HTMLURL == "" {
		return false
	}
	s.Panel = Panel{
		ID:          newID(),
		Open:        true,
		SelectedURL: a.HTMLURL,
		Phase:       Idle,
	}
	return true
}

// ClosePanel hides the panel and discards any answer.
type ClosePanel struct{}

func (ClosePanel) apply(s *State, _ func() string) bool {
	if !s.Panel.Open && s.Panel.SelectedURL == "" {
		return false
	}
	s.Panel = Panel{}
	return true
}

type QueryStarted struct {
	PanelID string
}

func (a QueryStarted) apply(s *State, _ func() string) bool {
	if !s.Panel.Visible() || s.Panel.ID != a.PanelID || s.Panel.Phase == Loading {
		return false
	}
	s.Panel.Phase = Loading
	s.Panel.Message = ""
	s.Panel.Error = ""
	return true
}

type QueryResolved struct {
	PanelID string
	Message string
}

func (a QueryResolved) apply(s *State, _ func() string) bool {
	if s.Panel.ID != a.PanelID || s.Panel.Phase != Loading {
		return false
	}
	s.Panel.Phase = Displaying
	s.Panel.Message = a.Message
	return true
}

type QueryFailed struct {
	PanelID string
	Err     error
}

func (a QueryFailed) apply(s *State, _ func() string) bool {
	if s.Panel.ID != a.PanelID || s.Panel.Phase != Loading {
		return false
	}
	s.Panel.Phase = Failed
	if a.Err != nil {
		s.Panel.Error = a.Err.Error()
	}
	return true
}
