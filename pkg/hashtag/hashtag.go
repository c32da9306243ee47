// Package hashtag splits a raw post body into the displayed message and an
// optional trailing hashtag.
package hashtag

import (
	"regexp"
	"strings"
)

var trailingTag = regexp.MustCompile(`^[\w!?\\. ]* #[a-zA-Z0-9]+$`)

// Parse returns the message and tag of raw. A tag is only recognised when it is a
// single alphanumeric token at the very end, separated from the message by a space.
// Anything else leaves raw untouched and returns an empty tag.
func Parse(raw string) (message, tag string) {
	if !trailingTag.MatchString(raw) {
		return raw, ""
	}
	idx := strings.Index(raw, "#")
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+1:])
}
