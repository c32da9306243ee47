package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"flutter/internal/model"
	"flutter/internal/service"
	"flutter/pkg/logger"

	"github.com/go-chi/chi/v5"
)

const (
	msgMissingParams = "Missing one or more of the required params."
	msgUnknownAvatar = "Yikes. Avatar does not exist."
	msgUnknownID     = "Yikes. ID does not exist."
	msgUnknownUser   = "Yikes. User does not exist."
	msgServerError   = "An error occurred on the server. Try again later."
)

//go:generate mockgen -source=handler.go -destination=./post_service_mock.go -package=rest flutter/internal/adapter/in/rest PostService
type PostService interface {
	CreatePost(ctx context.Context, req service.CreatePostRequest) (model.Post, error)
	GetPostByID(ctx context.Context, postID int64) (model.Post, error)
	GetPosts(ctx context.Context) ([]model.Post, error)
	GetTrendingPosts(ctx context.Context) ([]model.Post, error)
	SearchPosts(ctx context.Context, term string) ([]model.Post, error)
	GetUserPosts(ctx context.Context, user string) ([]model.Post, error)
	LikePost(ctx context.Context, postID int64) (int64, error)
}

type Handler struct {
	posts PostService
}

func NewHandler(posts PostService) *Handler {
	return &Handler{posts: posts}
}

// ListPosts serves all posts, the trending view (trending=true) or the posts
// matching a search term (search=...). A blank search term lists everything.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		posts []model.Post
		err   error
	)
	switch search := q.Get("search"); {
	case q.Get("trending") == "true":
		posts, err = h.posts.GetTrendingPosts(r.Context())
	case strings.TrimSpace(search) != "":
		posts, err = h.posts.SearchPosts(r.Context(), search)
	default:
		posts, err = h.posts.GetPosts(r.Context())
	}
	if err != nil {
		h.fail(w, r, err, msgMissingParams)
		return
	}

	writeJSON(w, r, http.StatusOK, toPostList(posts))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgUnknownID)
		return
	}

	post, err := h.posts.GetPostByID(r.Context(), postID)
	if err != nil {
		h.fail(w, r, err, msgUnknownID)
		return
	}

	writeJSON(w, r, http.StatusOK, toPostResponse(post))
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		logger.FromContext(r.Context()).Debug("unreadable request body", "error", err)
		writeText(w, http.StatusBadRequest, msgMissingParams)
		return
	}

	post, err := h.posts.CreatePost(r.Context(), service.CreatePostRequest{
		User:   fields["user"],
		Post:   fields["post"],
		Avatar: fields["avatar"],
	})
	if err != nil {
		h.fail(w, r, err, msgMissingParams)
		return
	}

	logger.FromContext(r.Context()).Info("post created", "post_id", post.ID, "user", post.User)
	writeJSON(w, r, http.StatusOK, toPostResponse(post))
}

// LikePost adds one like and answers with the new count as plain text.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil || fields["id"] == "" {
		writeText(w, http.StatusBadRequest, msgMissingParams)
		return
	}

	postID, err := strconv.ParseInt(strings.TrimSpace(fields["id"]), 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgUnknownID)
		return
	}

	likes, err := h.posts.LikePost(r.Context(), postID)
	if err != nil {
		h.fail(w, r, err, msgUnknownID)
		return
	}

	writeText(w, http.StatusOK, strconv.FormatInt(likes, 10))
}

func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	username, err := pathParam(r, "username")
	if err != nil {
		writeText(w, http.StatusBadRequest, msgUnknownUser)
		return
	}

	posts, err := h.posts.GetUserPosts(r.Context(), username)
	if err != nil {
		h.fail(w, r, err, msgUnknownUser)
		return
	}

	writeJSON(w, r, http.StatusOK, toPostList(posts))
}

// pathParam returns a decoded route parameter. chi matches on RawPath when the
// request has one, and the parameter is still escaped in that case.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func (h *Handler) Avatars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toAvatarList(model.Avatars()))
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// fail maps service errors to responses. Client errors without a more specific
// message are answered with badRequestMsg.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, badRequestMsg string) {
	switch {
	case errors.Is(err, service.ErrMissingParams):
		writeText(w, http.StatusBadRequest, msgMissingParams)
	case errors.Is(err, service.ErrUnknownAvatar):
		writeText(w, http.StatusBadRequest, msgUnknownAvatar)
	case errors.Is(err, service.ErrPostNotFound):
		writeText(w, http.StatusBadRequest, msgUnknownID)
	case errors.Is(err, service.ErrUserNotFound):
		writeText(w, http.StatusBadRequest, msgUnknownUser)
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrNotFound):
		writeText(w, http.StatusBadRequest, badRequestMsg)
	default:
		logger.FromContext(r.Context()).Error("request failed", "error", err)
		writeText(w, http.StatusInternalServerError, msgServerError)
	}
}
