package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flutter/internal/adapter/out/storage"
	"flutter/internal/model"
	"flutter/internal/service"
	"flutter/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
)

var (
	ErrBuildingQuery = errors.New("error building sql-query")
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostStorage struct {
	db DB
}

func NewPostStorage(db DB) *PostStorage {
	return &PostStorage{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *PostStorage) CreatePost(ctx context.Context, in model.Post) (model.Post, error) {
	var out model.Post

	query, args, err := sq.
		Insert(tableinfo.PostsTableName).
		Columns(
			tableinfo.PostUserColumn,
			tableinfo.PostBodyColumn,
			tableinfo.PostHashtagColumn,
			tableinfo.PostLikesColumn,
			tableinfo.PostAvatarColumn,
		).
		Values(in.User, in.Text, in.Hashtag, in.Likes, string(in.Avatar)).
		Suffix("RETURNING " + strings.Join(tableinfo.PostColumns, ", ")).
		ToSql()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	if err := scanPost(s.db.QueryRowContext(ctx, query, args...), &out); err != nil {
		return out, fmt.Errorf("exec error creating post: %w", err)
	}
	return out, nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, postID int64) (model.Post, error) {
	var out model.Post

	query, args, err := selectPosts().
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		ToSql()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	if err := scanPost(s.db.QueryRowContext(ctx, query, args...), &out); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, service.ErrNotFound
		}
		return out, fmt.Errorf("exec select post by id: %w", err)
	}
	return out, nil
}

func (s *PostStorage) GetPosts(ctx context.Context) ([]model.Post, error) {
	return s.queryPosts(ctx, selectPosts().OrderBy(storage.NewestFirst...))
}

func (s *PostStorage) GetTrendingPosts(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = service.TrendingLimit
	}
	return s.queryPosts(ctx, selectPosts().
		OrderBy(storage.MostLikedFirst...).
		Limit(uint64(limit)))
}

func (s *PostStorage) SearchPosts(ctx context.Context, term string) ([]model.Post, error) {
	return s.queryPosts(ctx, selectPosts().
		Where(storage.SearchCondition(term)).
		OrderBy(storage.NewestFirst...))
}

func (s *PostStorage) GetPostsByUser(ctx context.Context, user string) ([]model.Post, error) {
	return s.queryPosts(ctx, selectPosts().
		Where(sq.Eq{tableinfo.PostUserColumn: user}).
		OrderBy(storage.NewestFirst...))
}

func (s *PostStorage) IncrementLikes(ctx context.Context, postID int64) (int64, error) {
	query, args, err := sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostLikesColumn, sq.Expr(tableinfo.PostLikesColumn+" + 1")).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix("RETURNING " + tableinfo.PostLikesColumn).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	var likes int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&likes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, service.ErrNotFound
		}
		return 0, fmt.Errorf("exec update likes: %w", err)
	}
	return likes, nil
}

func (s *PostStorage) queryPosts(ctx context.Context, qb sq.SelectBuilder) ([]model.Post, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select posts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func selectPosts() sq.SelectBuilder {
	return sq.
		Select(tableinfo.PostColumns...).
		From(tableinfo.PostsTableName)
}

func scanPost(row scanner, p *model.Post) error {
	var avatar string
	if err := row.Scan(
		&p.ID,
		&p.User,
		&p.Text,
		&p.Hashtag,
		&p.Likes,
		timestamp{&p.CreatedAt},
		&avatar,
	); err != nil {
		return err
	}
	p.Avatar = model.Avatar(avatar)
	return nil
}
