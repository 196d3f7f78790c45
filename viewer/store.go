package viewer

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"repo-orbit/model"
)

var (
	ErrNoSelection   = errors.New("no node selected")
	ErrQueryInFlight = errors.New("a query is already running for this panel")
)

// Asker answers a question about the file at url in repo.
type Asker interface {
	Query(ctx context.Context, repo model.RepoComponents, url string) (string, error)
}

// Store owns the viewer state. All writes go through Dispatch.
type Store struct {
	mu       sync.RWMutex
	state    State
	newID    func() string
	onChange []func(State)
}

func NewStore() *Store {
	return &Store{
		state: NewState(),
		newID: uuid.NewString,
	}
}

// OnChange registers fn to be called with a snapshot after every state change.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Dispatch applies a and reports whether the state changed.
func (s *Store) Dispatch(a Action) bool {
	s.mu.Lock()
	changed := a.apply(&s.state, s.newID)
	var snapshot State
	listeners := s.onChange
	if changed && len(listeners) > 0 {
		snapshot = s.state.clone()
	}
	s.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(snapshot)
		}
	}
	return changed
}

// Snapshot returns a copy of the current state that is safe to read while
// further actions are dispatched.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// StartQuery moves the open panel to Loading and returns it. It fails with
// ErrNoSelection when no panel is open and ErrQueryInFlight while the panel
// is already loading.
func (s *Store) StartQuery() (Panel, error) {
	panel := s.Snapshot().Panel
	if !panel.Visible() {
		return Panel{}, ErrNoSelection
	}
	if !s.Dispatch(QueryStarted{PanelID: panel.ID}) {
		if !s.Snapshot().Panel.Visible() {
			return Panel{}, ErrNoSelection
		}
		return Panel{}, ErrQueryInFlight
	}

	panel.Phase = Loading
	panel.Message = ""
	panel.Error = ""
	return panel, nil
}

// RunQuery asks about the panel returned by StartQuery and records the answer
// on it. If the panel was closed or another node was selected in the
// meantime, the answer is dropped.
func (s *Store) RunQuery(ctx context.Context, repo model.RepoComponents, asker Asker, panel Panel) error {
	logger := log.With().
		Str("repo", repo.FullName()).
		Str("panel", panel.ID).
		Str("url", panel.SelectedURL).
		Logger()
	logger.Info().Msg("Querying Greptile")

	message, err := asker.Query(ctx, repo, panel.SelectedURL)
	if err != nil {
		logger.Error().Err(err).Msg("Greptile query failed")
		if !s.Dispatch(QueryFailed{PanelID: panel.ID, Err: err}) {
			logger.Debug().Msg("Dropped failure for a closed panel")
		}
		return err
	}

	if !s.Dispatch(QueryResolved{PanelID: panel.ID, Message: message}) {
		logger.Debug().Msg("Dropped answer for a closed panel")
	}
	return nil
}

// Ask runs StartQuery and RunQuery back to back.
func (s *Store) Ask(ctx context.Context, repo model.RepoComponents, asker Asker) error {
	panel, err := s.StartQuery()
	if err != nil {
		return err
	}
	return s.RunQuery(ctx, repo, asker, panel)
}
