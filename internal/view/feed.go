// Package view derives feed and detail presentations from content reads.
// Everything here is pure apart from the Renderer's memo cache.
package view

import (
	"strings"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
)

// FilterFeed keeps posts whose title contains searchTerm (ignoring case) and
// whose flags contain category. An empty term or category matches everything,
// and order is preserved.
func FilterFeed(posts []models.Post, searchTerm string, category models.Flag) []models.Post {
	if searchTerm == "" && category == "" {
		return posts
	}

	term := strings.ToLower(searchTerm)
	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if term != "" && !strings.Contains(strings.ToLower(p.Title), term) {
			continue
		}
		if category != "" && !p.Flags.Contains(category) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// CommentCounts maps every post id to its number of comments, zero included.
func CommentCounts(posts []models.Post, comments []models.Comment) map[string]int {
	counts := make(map[string]int, len(posts))
	for _, p := range posts {
		counts[p.ID] = 0
	}
	for _, c := range comments {
		if _, ok := counts[c.PostID]; ok {
			counts[c.PostID]++
		}
	}
	return counts
}

// FeedItem is one row of the home feed.
type FeedItem struct {
	models.Post
	CommentCount int    `json:"comment_count"`
	Age          string `json:"age"`
	Excerpt      string `json:"excerpt"`
}

// BuildFeed projects posts into feed rows in the given order.
func BuildFeed(posts []models.Post, comments []models.Comment, now time.Time, excerptWords int) []FeedItem {
	counts := CommentCounts(posts, comments)
	items := make([]FeedItem, len(posts))
	for i, p := range posts {
		items[i] = FeedItem{
			Post:         p,
			CommentCount: counts[p.ID],
			Age:          FormatRelativeTime(p.CreatedAt, now),
			Excerpt:      Truncate(p.Content, excerptWords),
		}
	}
	return items
}

// CommentView is a comment with its age label.
type CommentView struct {
	models.Comment
	Age string `json:"age"`
}

// PostDetail is the single post page: the post, its rendered body and its thread.
type PostDetail struct {
	models.Post
	Age         string        `json:"age"`
	ContentHTML string        `json:"content_html"`
	Comments    []CommentView `json:"comments"`
}

// BuildPostDetail assembles the detail page. A nil renderer leaves ContentHTML empty.
func BuildPostDetail(post models.Post, comments []models.Comment, now time.Time, renderer *Renderer) PostDetail {
	detail := PostDetail{
		Post:     post,
		Age:      FormatRelativeTime(post.CreatedAt, now),
		Comments: make([]CommentView, len(comments)),
	}
	if renderer != nil {
		detail.ContentHTML = renderer.Render(post.Content)
	}
	for i, c := range comments {
		detail.Comments[i] = CommentView{Comment: c, Age: FormatRelativeTime(c.CreatedAt, now)}
	}
	return detail
}
