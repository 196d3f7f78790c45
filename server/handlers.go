package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"repo-orbit/scene"
	"repo-orbit/viewer"
)

// SceneResponse is the drawable scene plus the state the page needs around it
type SceneResponse struct {
	scene.Scene
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	Panel   viewer.Panel `json:"panel"`
}

// NodeRequest names a drawn node by its id (the node's path).
type NodeRequest struct {
	ID string `json:"id"`
}

func (s *Server) getScene(c echo.Context) error {
	return c.JSON(http.StatusOK, s.buildScene(s.store.Snapshot()))
}

func (s *Server) getState(c echo.Context) error {
	state := s.store.Snapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"expanded": state.ExpandedSHAs(),
		"panel":    state.Panel,
	})
}

func (s *Server) getLegend(c echo.Context) error {
	return c.JSON(http.StatusOK, viewer.DefaultLegend())
}

// lookup finds a node in the currently drawn scene. Hidden nodes cannot be
// clicked, so they are not found.
func (s *Server) lookup(c echo.Context) (scene.Node, error) {
	var req NodeRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return scene.Node{}, echo.NewHTTPError(http.StatusBadRequest, "node id is required")
	}

	node, ok := s.buildScene(s.store.Snapshot()).Find(req.ID)
	if !ok {
		return scene.Node{}, echo.NewHTTPError(http.StatusNotFound, "node is not in the scene")
	}
	return node, nil
}

// toggleNode is a primary click
func (s *Server) toggleNode(c echo.Context) error {
	node, err := s.lookup(c)
	if err != nil {
		return err
	}

	s.store.Dispatch(viewer.ToggleDir{SHA: node.SHA, Kind: node.Kind})
	return c.JSON(http.StatusOK, s.buildScene(s.store.Snapshot()))
}

// selectNode is a secondary click
func (s *Server) selectNode(c echo.Context) error {
	node, err := s.lookup(c)
	if err != nil {
		return err
	}
	if node.HTMLURL == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "node has no web page to ask about")
	}

	s.store.Dispatch(viewer.Select{HTMLURL: node.HTMLURL})
	return c.JSON(http.StatusOK, s.store.Snapshot().Panel)
}

// queryPanel moves the open panel to Loading and answers with it. The
// Greptile answer lands on the panel asynchronously; clients poll /api/state.
func (s *Server) queryPanel(c echo.Context) error {
	panel, err := s.store.StartQuery()
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	go func() {
		_ = s.store.RunQuery(s.base, s.repo, s.asker, panel)
	}()

	return c.JSON(http.StatusAccepted, panel)
}

func (s *Server) closePanel(c echo.Context) error {
	s.store.Dispatch(viewer.ClosePanel{})
	return c.JSON(http.StatusOK, s.store.Snapshot().Panel)
}
