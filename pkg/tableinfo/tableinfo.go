package tableinfo

const (
	PostsTableName = "posts"

	PostIDColumn      = "id"
	PostUserColumn    = `"user"` // reserved word in postgres
	PostBodyColumn    = "post"
	PostHashtagColumn = "hashtag"
	PostLikesColumn   = "likes"
	PostDateColumn    = "date"
	PostAvatarColumn  = "avatar"
)

// PostColumns is the column order every post select and RETURNING clause uses.
var PostColumns = []string{
	PostIDColumn,
	PostUserColumn,
	PostBodyColumn,
	PostHashtagColumn,
	PostLikesColumn,
	PostDateColumn,
	PostAvatarColumn,
}
