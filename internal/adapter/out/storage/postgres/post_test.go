package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"flutter/internal/adapter/out/storage/postgres/mocks"
	"flutter/internal/model"
	"flutter/internal/service"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var postColumns = []string{"id", "user", "post", "hashtag", "likes", "date", "avatar"}

func TestPostStorage_CreatePost(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		input model.Post
		setup func(m *mocks.MockDB)
		check func(t *testing.T, got model.Post, err error)
	}{
		{
			name: "success",
			input: model.Post{
				User:    "lauren",
				Text:    "just vibing",
				Hashtag: "chill",
				Avatar:  model.AvatarCat,
			},
			setup: func(m *mocks.MockDB) {
				m.EXPECT().
					QueryRow(
						gomock.Any(), // ctx
						gomock.Any(), // sql
						"lauren", "just vibing", "chill", int64(0), "cat",
					).
					DoAndReturn(func(_ context.Context, sql string, _ ...any) pgx.Row {
						require.Contains(t, sql, `INSERT INTO posts ("user",post,hashtag,likes,avatar)`)
						require.Contains(t, sql, `RETURNING id, "user", post, hashtag, likes, date, avatar`)
						return fakeRow{
							scan: func(dest ...any) error {
								*(dest[0].(*int64)) = 1
								*(dest[1].(*string)) = "lauren"
								*(dest[2].(*string)) = "just vibing"
								*(dest[3].(*string)) = "chill"
								*(dest[4].(*int64)) = 0
								*(dest[5].(*time.Time)) = now
								*(dest[6].(*string)) = "cat"
								return nil
							},
						}
					})
			},
			check: func(t *testing.T, got model.Post, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(1), got.ID)
				require.Equal(t, "lauren", got.User)
				require.Equal(t, "just vibing", got.Text)
				require.Equal(t, "chill", got.Hashtag)
				require.Equal(t, int64(0), got.Likes)
				require.Equal(t, model.AvatarCat, got.Avatar)
				require.WithinDuration(t, now, got.CreatedAt, time.Second)
			},
		},
		{
			name:  "db error (scan fails)",
			input: model.Post{User: "bad", Text: "post", Avatar: model.AvatarBear},
			setup: func(m *mocks.MockDB) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), "bad", "post", "", int64(0), "bear").
					Return(fakeRow{
						scan: func(dest ...any) error {
							return errors.New("db down")
						},
					})
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "exec error creating post")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDB := mocks.NewMockDB(ctrl)
			tt.setup(mockDB)

			st := NewPostStorage(mockDB, trmpgx.DefaultCtxGetter)
			got, err := st.CreatePost(context.Background(), tt.input)
			tt.check(t, got, err)
		})
	}
}

func TestPostStorage_GetPostByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		postID int64
		setup  func(m *mocks.MockDB, postID int64)
		check  func(t *testing.T, got model.Post, err error)
	}{
		{
			name:   "success",
			postID: 7,
			setup: func(m *mocks.MockDB, postID int64) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), postID).
					Return(fakeRow{
						scan: func(dest ...any) error {
							*(dest[0].(*int64)) = postID
							*(dest[1].(*string)) = "lauren"
							*(dest[2].(*string)) = "hi"
							*(dest[3].(*string)) = ""
							*(dest[4].(*int64)) = 3
							*(dest[5].(*time.Time)) = now
							*(dest[6].(*string)) = "koala"
							return nil
						},
					})
			},
			check: func(t *testing.T, got model.Post, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(7), got.ID)
				require.Equal(t, int64(3), got.Likes)
				require.Equal(t, model.AvatarKoala, got.Avatar)
			},
		},
		{
			name:   "not found",
			postID: 404,
			setup: func(m *mocks.MockDB, postID int64) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), postID).
					Return(fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }})
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.ErrorIs(t, err, service.ErrNotFound)
			},
		},
		{
			name:   "db error",
			postID: 500,
			setup: func(m *mocks.MockDB, postID int64) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), postID).
					Return(fakeRow{scan: func(dest ...any) error { return errors.New("db down") }})
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.Error(t, err)
				require.NotErrorIs(t, err, service.ErrNotFound)
				require.Contains(t, err.Error(), "exec select post by id")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks.NewMockDB(ctrl)
			tt.setup(m, tt.postID)

			st := NewPostStorage(m, trmpgx.DefaultCtxGetter)
			got, err := st.GetPostByID(context.Background(), tt.postID)
			tt.check(t, got, err)
		})
	}
}

func TestPostStorage_GetPosts(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		setup func(m *mocks.MockDB)
		check func(t *testing.T, got []model.Post, err error)
	}{
		{
			name: "success two rows (DESC as returned)",
			setup: func(m *mocks.MockDB) {
				rows := pgxmock.NewRows(postColumns).
					AddRow(int64(3), "a", "b", "", int64(0), now, "cat").
					AddRow(int64(2), "c", "d", "tag", int64(5), now.Add(-time.Minute), "frog").
					Kind()

				// no placeholders: Query(ctx, sql)
				m.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
						require.Contains(t, sql, "FROM posts ORDER BY date DESC, id DESC")
						return rows, nil
					})
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.NoError(t, err)
				require.Len(t, got, 2)
				require.Equal(t, int64(3), got[0].ID)
				require.Equal(t, int64(2), got[1].ID)
				require.Equal(t, "tag", got[1].Hashtag)
				require.Equal(t, model.AvatarFrog, got[1].Avatar)
			},
		},
		{
			name: "empty table",
			setup: func(m *mocks.MockDB) {
				m.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					Return(pgxmock.NewRows(postColumns).Kind(), nil)
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Empty(t, got)
			},
		},
		{
			name: "query error",
			setup: func(m *mocks.MockDB) {
				m.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("boom"))
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.Error(t, err)
				require.Nil(t, got)
				require.Contains(t, err.Error(), "exec error selecting posts")
			},
		},
		{
			name: "scan error on second row",
			setup: func(m *mocks.MockDB) {
				rows := pgxmock.NewRows(postColumns).
					AddRow(int64(2), "a", "b", "", int64(0), now, "cat").
					// broken created_at on the second row
					AddRow(int64(1), "a", "b", "", int64(0), "bad_time", "cat").
					Kind()

				m.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					Return(rows, nil)
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.Error(t, err)
				require.Nil(t, got)
				require.Contains(t, err.Error(), "scan error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDB := mocks.NewMockDB(ctrl)
			tt.setup(mockDB)

			st := NewPostStorage(mockDB, trmpgx.DefaultCtxGetter)
			got, err := st.GetPosts(context.Background())
			tt.check(t, got, err)
		})
	}
}

func TestPostStorage_GetTrendingPosts(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		limit     int
		wantLimit string
	}{
		{name: "explicit limit", limit: 3, wantLimit: "LIMIT 3"},
		{name: "default limit", limit: 0, wantLimit: "LIMIT 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks.NewMockDB(ctrl)
			rows := pgxmock.NewRows(postColumns).
				AddRow(int64(1), "a", "b", "", int64(9), now, "cat").
				AddRow(int64(2), "a", "c", "", int64(4), now, "cat").
				Kind()

			m.EXPECT().
				Query(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
					require.Contains(t, sql, "ORDER BY likes DESC, date DESC, id DESC")
					require.Contains(t, sql, tt.wantLimit)
					return rows, nil
				})

			st := NewPostStorage(m, trmpgx.DefaultCtxGetter)
			got, err := st.GetTrendingPosts(context.Background(), tt.limit)
			require.NoError(t, err)
			require.Len(t, got, 2)
			require.GreaterOrEqual(t, got[0].Likes, got[1].Likes)
		})
	}
}

func TestPostStorage_SearchPosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now()
	m := mocks.NewMockDB(ctrl)

	rows := pgxmock.NewRows(postColumns).
		AddRow(int64(4), "lauren", "just vibing", "chill", int64(0), now, "cat").
		Kind()

	m.EXPECT().
		Query(gomock.Any(), gomock.Any(), "%CHI%", "%CHI%", "%CHI%").
		DoAndReturn(func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
			require.Contains(t, sql, `LOWER("user") LIKE LOWER($1)`)
			require.Contains(t, sql, `LOWER(post) LIKE LOWER($2)`)
			require.Contains(t, sql, `LOWER(hashtag) LIKE LOWER($3)`)
			return rows, nil
		})

	st := NewPostStorage(m, trmpgx.DefaultCtxGetter)
	got, err := st.SearchPosts(context.Background(), "CHI")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(4), got[0].ID)
}

func TestPostStorage_GetPostsByUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockDB(ctrl)

	m.EXPECT().
		Query(gomock.Any(), gomock.Any(), "nobody").
		DoAndReturn(func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
			require.Contains(t, sql, `WHERE "user" = $1`)
			require.Contains(t, sql, "ORDER BY date DESC, id DESC")
			return pgxmock.NewRows(postColumns).Kind(), nil
		})

	st := NewPostStorage(m, trmpgx.DefaultCtxGetter)
	got, err := st.GetPostsByUser(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPostStorage_IncrementLikes(t *testing.T) {
	tests := []struct {
		name   string
		postID int64
		setup  func(m *mocks.MockDB, postID int64)
		check  func(t *testing.T, got int64, err error)
	}{
		{
			name:   "success",
			postID: 10,
			setup: func(m *mocks.MockDB, postID int64) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), postID).
					DoAndReturn(func(_ context.Context, sql string, _ ...any) pgx.Row {
						require.Contains(t, sql, "SET likes = likes + 1")
						require.Contains(t, sql, "RETURNING likes")
						return fakeRow{
							scan: func(dest ...any) error {
								*(dest[0].(*int64)) = 6
								return nil
							},
						}
					})
			},
			check: func(t *testing.T, got int64, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(6), got)
			},
		},
		{
			name:   "not found",
			postID: 404,
			setup: func(m *mocks.MockDB, postID int64) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), postID).
					Return(fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }})
			},
			check: func(t *testing.T, _ int64, err error) {
				require.ErrorIs(t, err, service.ErrNotFound)
			},
		},
		{
			name:   "db error",
			postID: 11,
			setup: func(m *mocks.MockDB, postID int64) {
				m.EXPECT().
					QueryRow(gomock.Any(), gomock.Any(), postID).
					Return(fakeRow{scan: func(dest ...any) error { return errors.New("update failed") }})
			},
			check: func(t *testing.T, _ int64, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "exec update likes")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks.NewMockDB(ctrl)
			tt.setup(m, tt.postID)

			st := NewPostStorage(m, trmpgx.DefaultCtxGetter)
			got, err := st.IncrementLikes(context.Background(), tt.postID)
			tt.check(t, got, err)
		})
	}
}

func TestEnsureSchema(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockDB(ctrl)
	m.EXPECT().
		Exec(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			require.Contains(t, sql, "CREATE TABLE IF NOT EXISTS posts")
			return pgconn.NewCommandTag("CREATE INDEX"), nil
		})
	require.NoError(t, EnsureSchema(context.Background(), m))

	m.EXPECT().
		Exec(gomock.Any(), gomock.Any()).
		Return(pgconn.CommandTag{}, errors.New("permission denied"))
	require.ErrorContains(t, EnsureSchema(context.Background(), m), "exec schema")
}

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }
