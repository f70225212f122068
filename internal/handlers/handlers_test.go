package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"github.com/anonto42/threadboard/backend/internal/repositories"
	"github.com/anonto42/threadboard/backend/internal/services"
	"github.com/anonto42/threadboard/backend/internal/view"
	"github.com/anonto42/threadboard/backend/validators"
	"github.com/labstack/echo/v4"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type feedResponse struct {
	Posts []struct {
		ID           string        `json:"id"`
		Title        string        `json:"title"`
		Upvotes      int           `json:"upvotes"`
		Flags        []models.Flag `json:"flags"`
		CommentCount int           `json:"comment_count"`
		Age          string        `json:"age"`
		Excerpt      string        `json:"excerpt"`
	} `json:"posts"`
	Sort string `json:"sort"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := repositories.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewContentService(store, store, logger,
		services.WithClock(func() time.Time { return testNow }))

	renderer, err := view.NewRenderer(16)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1")

	postHandler := NewPostHandler(svc, renderer, 5)
	postHandler.now = func() time.Time { return testNow.Add(3 * time.Hour) }
	postHandler.RegisterPostRoutes(api)
	NewCommentHandler(svc).RegisterCommentRoutes(api)
	e.GET("/health", HealthCheck)
	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createPost(t *testing.T, e *echo.Echo, body string) models.Post {
	t.Helper()
	rec := doRequest(e, http.MethodPost, "/api/v1/posts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d, body %s", rec.Code, rec.Body.String())
	}
	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	return post
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(t)
	rec := doRequest(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePost(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/posts",
		`{"title":"Derby day","content":"who wins","secret_key":"s3cret","flags":["News","Question"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "s3cret") {
		t.Fatalf("secret key leaked: %s", rec.Body.String())
	}

	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatal(err)
	}
	if post.ID == "" || post.UserID == "" || post.Upvotes != 0 || len(post.Flags) != 2 {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestCreatePostRejectsBadInput(t *testing.T) {
	e := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"blank title", `{"title":"   ","content":"x"}`},
		{"missing title", `{"content":"x"}`},
		{"unknown flag", `{"title":"ok","flags":["Rumour"]}`},
		{"malformed json", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/api/v1/posts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
		})
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/posts", "")
	var feed feedResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &feed)
	if len(feed.Posts) != 0 {
		t.Fatalf("rejected posts were stored: %+v", feed.Posts)
	}
}

func TestFeedSortFilterAndCounts(t *testing.T) {
	e := newTestServer(t)
	first := createPost(t, e, `{"title":"Match report","content":"one two three four five six seven","flags":["News"]}`)
	second := createPost(t, e, `{"title":"Best keeper?","content":"short","flags":["Question"]}`)

	doRequest(e, http.MethodPost, "/api/v1/posts/"+first.ID+"/upvote", "")
	doRequest(e, http.MethodPost, "/api/v1/posts/"+first.ID+"/comments", `{"content":"great"}`)
	doRequest(e, http.MethodPost, "/api/v1/posts/"+first.ID+"/comments", `{"content":"agreed"}`)

	rec := doRequest(e, http.MethodGet, "/api/v1/posts?sort=upvotes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed: %d %s", rec.Code, rec.Body.String())
	}
	var feed feedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatal(err)
	}
	if len(feed.Posts) != 2 || feed.Posts[0].ID != first.ID || feed.Sort != "upvotes" {
		t.Fatalf("unexpected upvote order: %+v", feed)
	}
	if feed.Posts[0].CommentCount != 2 || feed.Posts[1].CommentCount != 0 {
		t.Fatalf("unexpected comment counts: %+v", feed.Posts)
	}
	if feed.Posts[0].Age != "3h ago" || feed.Posts[0].Excerpt != "one two three four five..." {
		t.Fatalf("unexpected projection: %+v", feed.Posts[0])
	}

	rec = doRequest(e, http.MethodGet, "/api/v1/posts?flag=question&q=KEEP", "")
	feed = feedResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &feed)
	if len(feed.Posts) != 1 || feed.Posts[0].ID != second.ID {
		t.Fatalf("unexpected filtered feed: %+v", feed.Posts)
	}
}

func TestFeedRejectsUnknownSortAndFlag(t *testing.T) {
	e := newTestServer(t)
	for _, q := range []string{"?sort=title", "?flag=rumour"} {
		rec := doRequest(e, http.MethodGet, "/api/v1/posts"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", q, rec.Code)
		}
	}
}

func TestGetPostDetail(t *testing.T) {
	e := newTestServer(t)
	post := createPost(t, e, `{"title":"Tactics","content":"**press** high <script>alert(1)</script>"}`)
	doRequest(e, http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", `{"content":"first"}`)

	rec := doRequest(e, http.MethodGet, "/api/v1/posts/"+post.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		ID          string `json:"id"`
		ContentHTML string `json:"content_html"`
		Comments    []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(detail.ContentHTML, "<strong>press</strong>") || strings.Contains(detail.ContentHTML, "<script>") {
		t.Fatalf("unexpected rendering: %q", detail.ContentHTML)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].Content != "first" {
		t.Fatalf("unexpected comments: %+v", detail.Comments)
	}

	if rec := doRequest(e, http.MethodGet, "/api/v1/posts/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing post: status %d, want 404", rec.Code)
	}
}

func TestUpdatePostRequiresSecret(t *testing.T) {
	e := newTestServer(t)
	post := createPost(t, e, `{"title":"Old","content":"body","secret_key":"k1"}`)
	path := "/api/v1/posts/" + post.ID

	if rec := doRequest(e, http.MethodPut, path, `{"secret_key":"nope","title":"New"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong key: status %d, want 403", rec.Code)
	}
	if rec := doRequest(e, http.MethodPut, path, `{"secret_key":"nope","title":"  "}`); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong key with blank title: status %d, want 403", rec.Code)
	}
	if rec := doRequest(e, http.MethodPut, path, `{"secret_key":"k1","title":"  "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title: status %d, want 400", rec.Code)
	}
	if rec := doRequest(e, http.MethodPut, "/api/v1/posts/missing", `{"secret_key":"k1","title":"x"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("missing post: status %d, want 404", rec.Code)
	}

	rec := doRequest(e, http.MethodPut, path, `{"secret_key":"k1","title":"New","flags":["Opinion"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var updated models.Post
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Title != "New" || updated.Content != "body" || !updated.Flags.Contains(models.FlagOpinion) {
		t.Fatalf("unexpected update: %+v", updated)
	}
}

func TestVerifySecretKey(t *testing.T) {
	e := newTestServer(t)
	post := createPost(t, e, `{"title":"Locked","secret_key":"Key"}`)
	path := "/api/v1/posts/" + post.ID + "/verify"

	if rec := doRequest(e, http.MethodPost, path, `{"secret_key":"key"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("case-different key: status %d, want 403", rec.Code)
	}
	if rec := doRequest(e, http.MethodPost, path, `{"secret_key":"Key"}`); rec.Code != http.StatusOK {
		t.Fatalf("matching key: status %d, want 200", rec.Code)
	}
}

func TestDeletePostRemovesComments(t *testing.T) {
	e := newTestServer(t)
	post := createPost(t, e, `{"title":"Gone soon","secret_key":"k"}`)
	path := "/api/v1/posts/" + post.ID
	doRequest(e, http.MethodPost, path+"/comments", `{"content":"bye"}`)

	if rec := doRequest(e, http.MethodDelete, path, `{"secret_key":"wrong"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong key: status %d, want 403", rec.Code)
	}
	if rec := doRequest(e, http.MethodDelete, path, `{"secret_key":"k"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(e, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted post: status %d, want 404", rec.Code)
	}

	rec := doRequest(e, http.MethodGet, path+"/comments", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("comments after delete: %d %s", rec.Code, rec.Body.String())
	}
}

func TestUpvoteMissingPost(t *testing.T) {
	e := newTestServer(t)
	if rec := doRequest(e, http.MethodPost, "/api/v1/posts/missing/upvote", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestCreateComment(t *testing.T) {
	e := newTestServer(t)
	post := createPost(t, e, `{"title":"Thread"}`)
	path := "/api/v1/posts/" + post.ID + "/comments"

	if rec := doRequest(e, http.MethodPost, path, `{"content":"   "}`); rec.Code != http.StatusNoContent {
		t.Fatalf("blank comment: status %d, want 204", rec.Code)
	}
	if rec := doRequest(e, http.MethodPost, "/api/v1/posts/missing/comments", `{"content":"hi"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("missing post: status %d, want 404", rec.Code)
	}

	rec := doRequest(e, http.MethodPost, path, `{"content":"nice one"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	doRequest(e, http.MethodPost, path, `{"content":"second"}`)

	rec = doRequest(e, http.MethodGet, path, "")
	var comments []models.Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &comments); err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 || comments[0].Content != "nice one" || comments[1].Content != "second" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}
