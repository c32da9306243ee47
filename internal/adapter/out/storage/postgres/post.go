package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flutter/internal/adapter/out/storage"
	"flutter/internal/model"
	"flutter/internal/service"
	"flutter/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrBuildingQuery = errors.New("error building sql-query")
)

//go:generate mockgen -destination=./mocks/db_mock.go -package=mocks flutter/internal/adapter/out/storage/postgres DB
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostStorage struct {
	db     DB
	getter *trmpgx.CtxGetter
}

func NewPostStorage(db DB, getter *trmpgx.CtxGetter) *PostStorage {
	return &PostStorage{
		db:     db,
		getter: getter,
	}
}

// conn prefers the transaction stored in ctx and falls back to the pool.
func (s *PostStorage) conn(ctx context.Context) DB {
	if tr := s.getter.DefaultTrOrDB(ctx, nil); tr != nil {
		return tr
	}
	return s.db
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
		Suffix(returningPost()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	if err := scanPost(s.conn(ctx).QueryRow(ctx, query, args...), &out); err != nil {
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

	if err := scanPost(s.conn(ctx).QueryRow(ctx, query, args...), &out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, service.ErrNotFound
		}
		return out, fmt.Errorf("exec select post by id: %w", err)
	}

	return out, nil
}

func (s *PostStorage) GetPosts(ctx context.Context) ([]model.Post, error) {
	qb := selectPosts().OrderBy(storage.NewestFirst...)
	return s.queryPosts(ctx, qb, "exec error selecting posts")
}

func (s *PostStorage) GetTrendingPosts(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = service.TrendingLimit
	}
	qb := selectPosts().
		OrderBy(storage.MostLikedFirst...).
		Limit(uint64(limit))
	return s.queryPosts(ctx, qb, "exec error selecting trending posts")
}

func (s *PostStorage) SearchPosts(ctx context.Context, term string) ([]model.Post, error) {
	qb := selectPosts().
		Where(storage.SearchCondition(term)).
		OrderBy(storage.NewestFirst...)
	return s.queryPosts(ctx, qb, "exec error searching posts")
}

func (s *PostStorage) GetPostsByUser(ctx context.Context, user string) ([]model.Post, error) {
	qb := selectPosts().
		Where(sq.Eq{tableinfo.PostUserColumn: user}).
		OrderBy(storage.NewestFirst...)
	return s.queryPosts(ctx, qb, "exec error selecting user posts")
}

// IncrementLikes bumps the counter in a single statement so concurrent likes
// are never lost.
func (s *PostStorage) IncrementLikes(ctx context.Context, postID int64) (int64, error) {
	query, args, err := sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostLikesColumn, sq.Expr(tableinfo.PostLikesColumn+" + 1")).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix("RETURNING " + tableinfo.PostLikesColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	var likes int64
	if err := s.conn(ctx).QueryRow(ctx, query, args...).Scan(&likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrNotFound
		}
		return 0, fmt.Errorf("exec update likes: %w", err)
	}
	return likes, nil
}

func (s *PostStorage) queryPosts(ctx context.Context, qb sq.SelectBuilder, op string) ([]model.Post, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
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
		From(tableinfo.PostsTableName).
		PlaceholderFormat(sq.Dollar)
}

func returningPost() string {
	return "RETURNING " + strings.Join(tableinfo.PostColumns, ", ")
}

func scanPost(row pgx.Row, p *model.Post) error {
	var avatar string
	if err := row.Scan(
		&p.ID,
		&p.User,
		&p.Text,
		&p.Hashtag,
		&p.Likes,
		&p.CreatedAt,
		&avatar,
	); err != nil {
		return err
	}
	p.Avatar = model.Avatar(avatar)
	return nil
}
