package validators

import (
	"testing"

	"github.com/anonto42/threadboard/backend/internal/models"
)

func TestNotBlank(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(models.CreatePostRequest{Title: "hello"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	for _, title := range []string{"", "   ", "\t"} {
		if err := v.Validate(models.CreatePostRequest{Title: title}); err == nil {
			t.Errorf("title %q accepted", title)
		}
	}
}

func TestUpdateRequestLeavesTitleToService(t *testing.T) {
	v := NewValidator()
	blank := " "
	for _, req := range []models.UpdatePostRequest{
		{SecretKey: "k"},
		{Title: &blank},
	} {
		if err := v.Validate(req); err != nil {
			t.Fatalf("update request %+v rejected: %v", req, err)
		}
	}
}
