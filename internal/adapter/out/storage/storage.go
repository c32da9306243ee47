package storage

import (
	"strings"

	"flutter/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
)

// LikeEscape is the escape character used by ContainsPattern.
const LikeEscape = `\`

var likeReplacer = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// ContainsPattern turns a search term into a LIKE pattern matching the term as a
// literal substring. Case folding is left to the database so that both sides of
// the comparison go through the same LOWER.
func ContainsPattern(term string) string {
	return "%" + likeReplacer.Replace(term) + "%"
}

// SearchCondition matches posts whose author, message or hashtag contains term,
// ignoring case. It works for both postgres and sqlite.
func SearchCondition(term string) sq.Sqlizer {
	pattern := ContainsPattern(term)
	cond := make(sq.Or, 0, 3)
	for _, col := range []string{
		tableinfo.PostUserColumn,
		tableinfo.PostBodyColumn,
		tableinfo.PostHashtagColumn,
	} {
		cond = append(cond, sq.Expr("LOWER("+col+") LIKE LOWER(?) ESCAPE '"+LikeEscape+"'", pattern))
	}
	return cond
}

// NewestFirst orders posts by creation date, newest first.
var NewestFirst = []string{
	tableinfo.PostDateColumn + " DESC",
	tableinfo.PostIDColumn + " DESC",
}

// MostLikedFirst orders posts by likes and keeps newer posts first on ties.
var MostLikedFirst = append([]string{tableinfo.PostLikesColumn + " DESC"}, NewestFirst...)
