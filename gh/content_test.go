package gh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-orbit/model"
)

type fakeEntry struct {
	name string
	kind model.Kind
}

// fakeGitHub serves /repos/owner/repo/contents/{path} from a map of directory
// listings. Paths listed in failing answer with the mapped status code.
type fakeGitHub struct {
	mu       sync.Mutex
	dirs     map[string][]fakeEntry
	failing  map[string]int
	requests []string
	auth     []string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/repos/owner/repo/contents"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	dir := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")

	f.mu.Lock()
	f.requests = append(f.requests, dir)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	if status, ok := f.failing[dir]; ok {
		w.WriteHeader(status)
		return
	}

	entries, ok := f.dirs[dir]
	if !ok {
		http.NotFound(w, r)
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		p := e.name
		if dir != "" {
			p = dir + "/" + e.name
		}
		item := map[string]any{
			"name":     e.name,
			"path":     p,
			"sha":      "sha-" + p,
			"size":     0,
			"url":      "https://api.github.com/repos/owner/repo/contents/" + p,
			"html_url": "https://github.com/owner/repo/tree/main/" + p,
			"git_url":  "https://api.github.com/repos/owner/repo/git/trees/sha-" + p,
			"type":     string(e.kind),
		}
		if e.kind == model.KindFile {
			item["size"] = 42
			item["html_url"] = "https://github.com/owner/repo/blob/main/" + p
			item["download_url"] = "https://raw.githubusercontent.com/owner/repo/main/" + p
		} else {
			item["download_url"] = nil
		}
		items = append(items, item)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-token")
	client.BaseURL = server.URL
	return client
}

var testRepo = model.RepoComponents{Owner: "owner", Repository: "repo"}

func names(nodes []*model.ContentNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestFetchTreeRecursive(t *testing.T) {
	fake := &fakeGitHub{dirs: map[string][]fakeEntry{
		"": {
			{"README.md", model.KindFile},
			{"src", model.KindDir},
			{"docs", model.KindDir},
		},
		"src":      {{"main.go", model.KindFile}, {"util", model.KindDir}},
		"src/util": {{"util.go", model.KindFile}},
		"docs":     {},
	}}
	client := newTestClient(t, fake)

	root, result, err := client.FetchTree(context.Background(), testRepo, "")
	require.NoError(t, err)

	assert.True(t, root.IsDir())
	assert.Equal(t, []string{"README.md", "src", "docs"}, names(root.Children))

	src := root.Children[1]
	assert.Equal(t, []string{"main.go", "util"}, names(src.Children))
	assert.Equal(t, []string{"util.go"}, names(src.Children[1].Children))
	assert.Empty(t, root.Children[2].Children)
	assert.Nil(t, root.Children[0].Children)

	file := root.Children[0]
	assert.Equal(t, "sha-README.md", file.SHA)
	assert.Equal(t, int64(42), file.Size)
	assert.Equal(t, "https://github.com/owner/repo/blob/main/README.md", file.HTMLURL)
	assert.Equal(t, "https://raw.githubusercontent.com/owner/repo/main/README.md", file.DownloadURL)
	assert.Empty(t, src.DownloadURL)

	assert.Equal(t, int64(4), result.Requests())
	assert.Equal(t, int64(3), result.Directories())
	assert.Empty(t, result.Errors.Message())

	for _, auth := range fake.auth {
		assert.Equal(t, "Bearer test-token", auth)
	}
}

func TestFetchTreeSubdirectoryFailureKeepsSiblings(t *testing.T) {
	fake := &fakeGitHub{
		dirs: map[string][]fakeEntry{
			"":    {{"broken", model.KindDir}, {"lib", model.KindDir}},
			"lib": {{"a.go", model.KindFile}, {"b.go", model.KindFile}},
		},
		failing: map[string]int{"broken": http.StatusInternalServerError},
	}
	client := newTestClient(t, fake)

	root, result, err := client.FetchTree(context.Background(), testRepo, "")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Errors.Message())
	assert.ErrorIs(t, result.Errors.Err(), ErrFetchError)
	assert.Equal(t, 1, result.Errors.Count())

	require.Len(t, root.Children, 2)
	assert.Empty(t, root.Children[0].Children)
	assert.Equal(t, []string{"a.go", "b.go"}, names(root.Children[1].Children))
}

func TestFetchTreeRootFailure(t *testing.T) {
	fake := &fakeGitHub{failing: map[string]int{"": http.StatusNotFound}}
	client := newTestClient(t, fake)

	root, result, err := client.FetchTree(context.Background(), testRepo, "")
	require.NoError(t, err)

	assert.Empty(t, root.Children)
	assert.ErrorIs(t, result.Errors.Err(), ErrNotFound)
}

func TestFetchTreeSequentialOrder(t *testing.T) {
	fake := &fakeGitHub{dirs: map[string][]fakeEntry{
		"":     {{"a", model.KindDir}, {"b", model.KindDir}, {"c", model.KindDir}},
		"a":    {{"a1", model.KindDir}},
		"a/a1": {},
		"b":    {},
		"c":    {},
	}}
	client := newTestClient(t, fake)
	client.Concurrency = 1

	var mu sync.Mutex
	var progress []string
	client.Progress = func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, path)
	}

	_, result, err := client.FetchTree(context.Background(), testRepo, "")
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Requests())
	assert.Equal(t, []string{"", "a", "a/a1", "b", "c"}, progress)
}

func TestFetchTreeCancelled(t *testing.T) {
	fake := &fakeGitHub{dirs: map[string][]fakeEntry{"": {{"a.go", model.KindFile}}}}
	client := newTestClient(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root, result, err := client.FetchTree(ctx, testRepo, "")
	require.NoError(t, err)

	assert.Empty(t, root.Children)
	assert.ErrorIs(t, result.Errors.Err(), context.Canceled)
	assert.Empty(t, fake.requests)
}

func TestFetchTreeInvalidRepo(t *testing.T) {
	client := NewClient("")
	_, _, err := client.FetchTree(context.Background(), model.RepoComponents{Owner: "owner"}, "")
	assert.ErrorIs(t, err, ErrInvalidRepo)
}

func TestContentsSingleFile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/contents/docs/guide.md", r.URL.Path)
		assert.Equal(t, "dev", r.URL.Query().Get("ref"))
		fmt.Fprint(w, `{"name":"guide.md","path":"docs/guide.md","sha":"abc","size":10,"type":"file"}`)
	}))

	repo := testRepo
	repo.Ref = "dev"
	items, err := client.Contents(context.Background(), repo, "docs/guide.md")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "guide.md", items[0].Name)
	assert.Equal(t, model.KindFile, items[0].Type)
}

func TestContentsStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		want    error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, ErrInvalidToken},
		{"rate limited", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, ErrRateLimitExceeded},
		{"forbidden", http.StatusForbidden, nil, ErrFetchError},
		{"too many requests", http.StatusTooManyRequests, nil, ErrRateLimitExceeded},
		{"not found", http.StatusNotFound, nil, ErrNotFound},
		{"server error", http.StatusBadGateway, nil, ErrFetchError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))

			_, err := client.Contents(context.Background(), testRepo, "")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestContentsWithoutToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		fmt.Fprint(w, `[]`)
	}))
	client.Token = ""

	items, err := client.Contents(context.Background(), testRepo, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestContentsEndpoint(t *testing.T) {
	assert.Equal(t, "owner/repo/contents", contentsEndpoint(testRepo, ""))
	assert.Equal(t, "owner/repo/contents/src/app", contentsEndpoint(testRepo, "/src/app/"))
	assert.Equal(t, "owner/repo/contents/docs%20&%20more", contentsEndpoint(testRepo, "docs & more"))

	withRef := testRepo
	withRef.Ref = "feat/x"
	assert.Equal(t, "owner/repo/contents/src?ref=feat%2Fx", contentsEndpoint(withRef, "src"))
}

func TestErrorSlot(t *testing.T) {
	var slot ErrorSlot
	assert.Empty(t, slot.Message())

	slot.Record(nil)
	assert.Equal(t, 0, slot.Count())

	slot.Record(errors.New("first"))
	slot.Record(errors.New("second"))
	assert.Equal(t, "second", slot.Message())
	assert.Equal(t, 2, slot.Count())
}
