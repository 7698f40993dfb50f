package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain failures returned by the services. Handlers translate them into
// redirects with a flash message, JSON error bodies or rendered error pages;
// the services themselves never render anything.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotOwner           = errors.New("only the author may change this article")
	ErrNotAuthenticated   = errors.New("authentication required")
	ErrSelfFollow         = errors.New("a profile cannot follow itself")
	ErrCategoryCycle      = errors.New("category cannot become its own ancestor")
	ErrCategoryInUse      = errors.New("category subtree still has attached articles")
	ErrCrossArticleParent = errors.New("parent comment belongs to a different article")
)

// ValidationError maps field names to messages so the caller can re-render
// the form with errors attached.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// AsValidation extracts a ValidationError if err carries one.
func AsValidation(err error) (ValidationError, bool) {
	var v ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
