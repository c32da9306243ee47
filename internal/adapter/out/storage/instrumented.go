package storage

import (
	"context"
	"errors"
	"time"

	"flutter/internal/metrics"
	"flutter/internal/model"
	"flutter/internal/service"
)

// Instrumented wraps a post storage and reports latency, failures and
// write counters to prometheus.
type Instrumented struct {
	next service.PostStorage
}

func NewInstrumented(next service.PostStorage) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) CreatePost(ctx context.Context, post model.Post) (model.Post, error) {
	start := time.Now()
	out, err := s.next.CreatePost(ctx, post)
	if err == nil {
		metrics.PostsCreated.Inc()
	}
	return out, record("create_post", start, err)
}

func (s *Instrumented) GetPostByID(ctx context.Context, postID int64) (model.Post, error) {
	start := time.Now()
	out, err := s.next.GetPostByID(ctx, postID)
	return out, record("get_post_by_id", start, err)
}

func (s *Instrumented) GetPosts(ctx context.Context) ([]model.Post, error) {
	start := time.Now()
	out, err := s.next.GetPosts(ctx)
	return out, record("get_posts", start, err)
}

func (s *Instrumented) GetTrendingPosts(ctx context.Context, limit int) ([]model.Post, error) {
	start := time.Now()
	out, err := s.next.GetTrendingPosts(ctx, limit)
	return out, record("get_trending_posts", start, err)
}

func (s *Instrumented) SearchPosts(ctx context.Context, term string) ([]model.Post, error) {
	start := time.Now()
	out, err := s.next.SearchPosts(ctx, term)
	return out, record("search_posts", start, err)
}

func (s *Instrumented) GetPostsByUser(ctx context.Context, user string) ([]model.Post, error) {
	start := time.Now()
	out, err := s.next.GetPostsByUser(ctx, user)
	return out, record("get_posts_by_user", start, err)
}

func (s *Instrumented) IncrementLikes(ctx context.Context, postID int64) (int64, error) {
	start := time.Now()
	likes, err := s.next.IncrementLikes(ctx, postID)
	if err == nil {
		metrics.LikesTotal.Inc()
	}
	return likes, record("increment_likes", start, err)
}

// record observes one call and hands err back unchanged. Missing posts are an
// expected outcome and do not count as failures.
func record(op string, start time.Time, err error) error {
	failure := err
	if errors.Is(err, service.ErrNotFound) {
		failure = nil
	}
	metrics.RecordStorageOp(op, time.Since(start), failure)
	return err
}
