package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"repo-orbit/model"
)

// ErrorSlot holds the most recent fetch failure of a traversal. Failures do
// not stop the traversal, so the slot may be overwritten several times.
type ErrorSlot struct {
	mu    sync.Mutex
	err   error
	count int
}

func (s *ErrorSlot) Record(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.count++
}

func (s *ErrorSlot) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Message returns the error text, or "" when nothing failed.
func (s *ErrorSlot) Message() string {
	if err := s.Err(); err != nil {
		return err.Error()
	}
	return ""
}

func (s *ErrorSlot) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// TreeResult describes a finished FetchTree traversal
type TreeResult struct {
	Errors      ErrorSlot
	requests    atomic.Int64
	directories atomic.Int64
}

func (r *TreeResult) Requests() int64 {
	return r.requests.Load()
}

func (r *TreeResult) Directories() int64 {
	return r.directories.Load()
}

func contentsEndpoint(repo model.RepoComponents, dir string) string {
	endpoint := fmt.Sprintf("%s/%s/contents", url.PathEscape(repo.Owner), url.PathEscape(repo.Repository))
	if dir = strings.Trim(dir, "/"); dir != "" {
		segments := strings.Split(dir, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		endpoint += "/" + strings.Join(segments, "/")
	}
	if repo.Ref != "" {
		endpoint += "?ref=" + url.QueryEscape(repo.Ref)
	}
	return endpoint
}

// Contents lists the entries at dir in upstream order. A path naming a single
// file yields that file as the only entry.
func (c *Client) Contents(ctx context.Context, repo model.RepoComponents, dir string) ([]*model.ContentNode, error) {
	if repo.IsZero() {
		return nil, ErrInvalidRepo
	}

	body, err := c.API(ctx, contentsEndpoint(repo, dir))
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var item model.ContentNode
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("decoding contents of %q: %w", dir, err)
		}
		return []*model.ContentNode{&item}, nil
	}

	var items []*model.ContentNode
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decoding contents of %q: %w", dir, err)
	}

	return items, nil
}

// FetchTree retrieves dir and every directory below it, one contents request
// per directory. A failing request is recorded in the result's error slot and
// leaves that directory with no children; the rest of the tree is still
// fetched. The returned error is only non-nil for an invalid repository.
func (c *Client) FetchTree(ctx context.Context, repo model.RepoComponents, dir string) (*model.ContentNode, *TreeResult, error) {
	if repo.IsZero() {
		return nil, nil, ErrInvalidRepo
	}

	limit := int64(c.Concurrency)
	if limit < 1 {
		limit = 1
	}

	t := &traversal{
		client:     c,
		repo:       repo,
		sem:        semaphore.NewWeighted(limit),
		result:     &TreeResult{},
		sequential: limit == 1,
	}

	root := model.NewRoot(repo, t.fetchAll(ctx, dir))
	if dir != "" {
		root.Path = dir
	}

	log.Debug().
		Str("repo", repo.FullName()).
		Int64("requests", t.result.Requests()).
		Int64("directories", t.result.Directories()).
		Int("errors", t.result.Errors.Count()).
		Msg("Fetched repository tree")

	return root, t.result, nil
}

type traversal struct {
	client *Client
	repo   model.RepoComponents
	sem    *semaphore.Weighted
	result *TreeResult

	// sequential walks depth first in upstream order, one request at a time.
	sequential bool
}

func (t *traversal) list(ctx context.Context, dir string) ([]*model.ContentNode, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	t.result.requests.Add(1)
	entries, err := t.client.Contents(ctx, t.repo, dir)
	if t.client.Progress != nil {
		t.client.Progress(dir, err)
	}
	return entries, err
}

func (t *traversal) fetchAll(ctx context.Context, dir string) []*model.ContentNode {
	if err := ctx.Err(); err != nil {
		t.result.Errors.Record(err)
		return []*model.ContentNode{}
	}

	entries, err := t.list(ctx, dir)
	if err != nil {
		log.Warn().Err(err).
			Str("repo", t.repo.FullName()).
			Str("path", dir).
			Msg("Failed to fetch directory contents")
		t.result.Errors.Record(err)
		return []*model.ContentNode{}
	}

	if t.sequential {
		for _, entry := range entries {
			if entry.IsDir() {
				t.result.directories.Add(1)
				entry.Children = t.fetchAll(ctx, entry.Path)
			}
		}
		return entries
	}

	// Each goroutine only writes its own entry, so upstream order survives.
	var g errgroup.Group
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		t.result.directories.Add(1)
		entry := entry
		g.Go(func() error {
			entry.Children = t.fetchAll(ctx, entry.Path)
			return nil
		})
	}
	_ = g.Wait()

	return entries
}
