package rest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"flutter/internal/adapter/out/storage/inmemory"
	"flutter/internal/service"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func newAppRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()

	svc := service.NewPostService(inmemory.NewPostStorage())
	return NewRouter(NewHandler(svc), cfg)
}

func createPost(t *testing.T, h http.Handler, user, post, avatar string) postResponse {
	t.Helper()

	rec := do(h, formRequest("/flutter/post", url.Values{"user": {user}, "post": {post}, "avatar": {avatar}}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out postResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func listPosts(t *testing.T, h http.Handler, query string) []postResponse {
	t.Helper()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/flutter/posts"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodePosts(t, rec)
}

func like(t *testing.T, h http.Handler, id int64) string {
	t.Helper()

	rec := do(h, formRequest("/flutter/likes", url.Values{"id": {strconv.FormatInt(id, 10)}}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Body.String()
}

func TestRouter_RoundTrip(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})

	created := createPost(t, h, "lauren", "just vibing #chill", "cat")
	require.Equal(t, "just vibing", created.Post)
	require.Equal(t, "chill", created.Hashtag)
	require.Equal(t, int64(0), created.Likes)
	require.Equal(t, "cat", created.Avatar)

	posts := listPosts(t, h, "")
	require.Len(t, posts, 1)
	require.Equal(t, created, posts[0])
}

func TestRouter_CreateWithOnlyUser_LeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})
	createPost(t, h, "ann", "first", "bear")

	rec := do(h, formRequest("/flutter/post", url.Values{"user": {"bob"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, msgMissingParams, rec.Body.String())

	rec = do(h, formRequest("/flutter/post", url.Values{"user": {"bob"}, "post": {"x"}, "avatar": {"dragon"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, msgUnknownAvatar, rec.Body.String())

	require.Len(t, listPosts(t, h, ""), 1)
}

func TestRouter_IdsIncrease(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})

	var last int64
	for i := 0; i < 5; i++ {
		p := createPost(t, h, "u", "message "+strconv.Itoa(i), "frog")
		require.Greater(t, p.ID, last)
		last = p.ID
	}
}

func TestRouter_Likes(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})
	x := createPost(t, h, "a", "x", "bear")
	y := createPost(t, h, "b", "y", "bird")

	require.Equal(t, "1", like(t, h, x.ID))
	require.Equal(t, "1", like(t, h, y.ID))
	require.Equal(t, "2", like(t, h, x.ID))

	rec := do(h, formRequest("/flutter/likes", url.Values{"id": {"999"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, msgUnknownID, rec.Body.String())
}

func TestRouter_Trending(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})

	for i, likes := range []int{1, 4, 0, 6, 2, 5, 3} {
		p := createPost(t, h, "u", "post "+strconv.Itoa(i), "koala")
		for j := 0; j < likes; j++ {
			like(t, h, p.ID)
		}
	}

	trending := listPosts(t, h, "?trending=true")
	require.Len(t, trending, service.TrendingLimit)
	for i := 1; i < len(trending); i++ {
		require.GreaterOrEqual(t, trending[i-1].Likes, trending[i].Likes)
	}
	require.Equal(t, int64(6), trending[0].Likes)
}

func TestRouter_Search(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})
	p := createPost(t, h, "Lauren", "just vibing #chill", "cat")
	createPost(t, h, "sam", "nothing here", "frog")

	for _, term := range []string{"laur", "VIBING", "chi", "st v"} {
		found := listPosts(t, h, "?search="+url.QueryEscape(term))
		require.Len(t, found, 1, term)
		require.Equal(t, p.ID, found[0].ID)
	}

	require.Empty(t, listPosts(t, h, "?search=zzz"))
	require.Len(t, listPosts(t, h, "?search="), 2)
}

func TestRouter_UserPosts(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})
	createPost(t, h, "ann", "one", "bear")
	createPost(t, h, "bob", "two", "bear")
	createPost(t, h, "ann", "three", "bear")

	rec := do(h, httptest.NewRequest(http.MethodGet, "/flutter/users/ann", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodePosts(t, rec)
	require.Len(t, posts, 2)
	require.Equal(t, "three", posts[0].Post)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/flutter/users/nonexistent_xyz", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, msgUnknownUser, rec.Body.String())
}

func TestRouter_UserPosts_EscapedNames(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{})
	createPost(t, h, "ann@home", "hi", "bear")
	createPost(t, h, "a+b", "hello", "bear")
	createPost(t, h, "100%", "sure", "bear")
	createPost(t, h, "ann", "other", "bear")

	tests := []struct {
		path     string
		wantUser string
	}{
		{path: "/flutter/users/ann@home", wantUser: "ann@home"},
		{path: "/flutter/users/ann%40home", wantUser: "ann@home"},
		{path: "/flutter/users/a%2Bb", wantUser: "a+b"},
		{path: "/flutter/users/a+b", wantUser: "a+b"},
		{path: "/flutter/users/100%25", wantUser: "100%"},
	}

	for _, tt := range tests {
		rec := do(h, httptest.NewRequest(http.MethodGet, tt.path, nil))
		require.Equal(t, http.StatusOK, rec.Code, tt.path)

		posts := decodePosts(t, rec)
		require.Len(t, posts, 1, tt.path)
		require.Equal(t, tt.wantUser, posts[0].User, tt.path)
	}
}

func TestRouter_Infrastructure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>flutter</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "cat.png"), []byte("png"), 0o644))

	h := newAppRouter(t, RouterConfig{StaticDir: dir, CORSAllowedOrigins: []string{"http://front.test"}})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "flutter")

	rec = do(h, httptest.NewRequest(http.MethodGet, "/img/cat.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "png", rec.Body.String())

	do(h, httptest.NewRequest(http.MethodGet, "/flutter/posts", nil))
	rec = do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `flutter_http_requests_total{method="GET",route="/flutter/posts",status_code="200"}`)

	req := httptest.NewRequest(http.MethodGet, "/flutter/avatars", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec = do(h, req)
	require.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/flutter/avatars", nil))
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodOptions, "/flutter/post", nil)
	req.Header.Set("Origin", "http://front.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = do(h, req)
	require.Equal(t, "http://front.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	h := newAppRouter(t, RouterConfig{
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})

	for i := 0; i < 2; i++ {
		rec := do(h, httptest.NewRequest(http.MethodGet, "/flutter/posts", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(h, httptest.NewRequest(http.MethodGet, "/flutter/posts", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
