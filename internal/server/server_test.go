package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikihop/wikihop/internal/config"
	"github.com/wikihop/wikihop/internal/search"
	"github.com/wikihop/wikihop/internal/store"
)

// fakeStore is an in-memory PathStore for handler tests.
type fakeStore struct {
	*search.Memory
	titles    map[int64]string
	redirects map[string]int64 // alias title -> canonical ID
	recorded  []store.SearchRecord
	recordErr error
	storeErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		Memory:    search.NewMemory(),
		titles:    make(map[int64]string),
		redirects: make(map[string]int64),
	}
}

func (f *fakeStore) addPage(id int64, title string) {
	f.titles[id] = title
}

func (f *fakeStore) ResolvePage(ctx context.Context, title string) (store.Page, bool, error) {
	if f.storeErr != nil {
		return store.Page{}, false, f.storeErr
	}
	if id, ok := f.redirects[title]; ok {
		return store.Page{ID: id, Title: f.titles[id]}, true, nil
	}
	for id, t := range f.titles {
		if strings.EqualFold(t, title) {
			return store.Page{ID: id, Title: t}, false, nil
		}
	}
	return store.Page{}, false, fmt.Errorf("%w: %q", store.ErrPageNotFound, title)
}

func (f *fakeStore) PageTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	out := make(map[int64]string)
	for _, id := range ids {
		if t, ok := f.titles[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (f *fakeStore) RecordSearch(ctx context.Context, rec store.SearchRecord) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, rec)
	return nil
}

func (f *fakeStore) Neighbors(ctx context.Context, dir search.Direction, ids []int64) (map[int64][]int64, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	return f.Memory.Neighbors(ctx, dir, ids)
}

func (f *fakeStore) DegreeSum(ctx context.Context, dir search.Direction, ids []int64) (int64, error) {
	if f.storeErr != nil {
		return 0, f.storeErr
	}
	return f.Memory.DegreeSum(ctx, dir, ids)
}

// diamondStore seeds Book -> {Paper, Ink} -> Library.
func diamondStore() *fakeStore {
	f := newFakeStore()
	f.addPage(1, "Book")
	f.addPage(2, "Paper")
	f.addPage(3, "Ink")
	f.addPage(4, "Library")
	f.AddEdge(1, 2)
	f.AddEdge(1, 3)
	f.AddEdge(2, 4)
	f.AddEdge(3, 4)
	return f
}

func testServer(t *testing.T, st PathStore) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(cfg, st, logger)
}

func postPaths(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/paths", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandlePathsDiamond(t *testing.T) {
	f := diamondStore()
	s := testServer(t, f)

	w := postPaths(t, s, pathsRequest{Source: "Book", Target: "Library"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pathsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "Book", resp.SourcePageTitle)
	assert.Equal(t, "Library", resp.TargetPageTitle)
	assert.False(t, resp.IsSourceRedirected)
	assert.False(t, resp.IsTargetRedirected)
	assert.ElementsMatch(t, [][]int64{{1, 2, 4}, {1, 3, 4}}, resp.Paths)
	assert.Equal(t, map[int64]pageInfo{
		1: {Title: "Book"},
		2: {Title: "Paper"},
		3: {Title: "Ink"},
		4: {Title: "Library"},
	}, resp.Pages)

	require.Len(t, f.recorded, 1)
	assert.Equal(t, int64(1), f.recorded[0].SourceID)
	assert.Equal(t, int64(4), f.recorded[0].TargetID)
	assert.Len(t, f.recorded[0].Paths, 2)
}

func TestHandlePathsUnknownTitle(t *testing.T) {
	s := testServer(t, diamondStore())

	w := postPaths(t, s, pathsRequest{Source: "Nope", Target: "Library"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Nope")
	assert.Contains(t, w.Body.String(), "does not exist")

	w = postPaths(t, s, pathsRequest{Source: "Book", Target: "Nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "End page")
}

func TestHandlePathsMissingBody(t *testing.T) {
	s := testServer(t, diamondStore())

	w := postPaths(t, s, map[string]string{"source": "Book"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/paths", strings.NewReader("not json"))
	w2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

func TestHandlePathsUnreachable(t *testing.T) {
	f := newFakeStore()
	f.addPage(1, "Island")
	f.addPage(2, "Mainland")
	s := testServer(t, f)

	w := postPaths(t, s, pathsRequest{Source: "Island", Target: "Mainland"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pathsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Paths)
	assert.Empty(t, resp.Pages)
}

func TestHandlePathsSourceEqualsTarget(t *testing.T) {
	s := testServer(t, diamondStore())

	w := postPaths(t, s, pathsRequest{Source: "Book", Target: "Book"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pathsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, [][]int64{{1}}, resp.Paths)
}

func TestHandlePathsAnalyticsFailureDoesNotAffectResult(t *testing.T) {
	f := diamondStore()
	f.recordErr = errors.New("searches table locked")
	s := testServer(t, f)

	w := postPaths(t, s, pathsRequest{Source: "Book", Target: "Library"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pathsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Paths, 2)
}

func TestHandlePathsMaxPathsCapsResponseNotAnalytics(t *testing.T) {
	f := diamondStore()
	cfg := config.DefaultConfig()
	cfg.Search.MaxPaths = 1
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s := New(cfg, f, logger)

	w := postPaths(t, s, pathsRequest{Source: "Book", Target: "Library"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pathsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Paths, 1)

	// The recorded search keeps every path the engine found.
	require.Len(t, f.recorded, 1)
	assert.Len(t, f.recorded[0].Paths, 2)
}

func TestHandlePathsAnalyticsDisabled(t *testing.T) {
	f := diamondStore()
	cfg := config.DefaultConfig()
	off := false
	cfg.Server.Analytics = &off
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s := New(cfg, f, logger)

	w := postPaths(t, s, pathsRequest{Source: "Book", Target: "Library"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.recorded)
}

func TestHandlePathsStoreFailureIsGeneric500(t *testing.T) {
	f := diamondStore()
	f.storeErr = errors.New("connection lost: secret-host:5432")
	s := testServer(t, f)

	w := postPaths(t, s, pathsRequest{Source: "Book", Target: "Library"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unexpected internal server error")
	assert.NotContains(t, w.Body.String(), "secret-host")
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, diamondStore())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "timestamp")
}

func TestRouteNotFound(t *testing.T) {
	s := testServer(t, diamondStore())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found: GET /missing")
}

func TestMethodNotAllowed(t *testing.T) {
	s := testServer(t, diamondStore())

	req := httptest.NewRequest(http.MethodGet, "/paths", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed")
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(t, diamondStore())

	req := httptest.NewRequest(http.MethodOptions, "/paths", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
