package models

import "fmt"

// SortField selects the descending order of the feed.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpvotes   SortField = "upvotes"
)

// ParseSortField accepts "created_at" or "upvotes"; empty means newest first.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, nil
	case SortByUpvotes:
		return SortByUpvotes, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}
