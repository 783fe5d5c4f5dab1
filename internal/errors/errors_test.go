package errors

import (
	"fmt"
	"testing"
)

func TestFolioError_Error(t *testing.T) {
	err := &FolioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "article not found",
	}

	expected := "NOT_FOUND: article not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("slug is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "slug is required" {
		t.Errorf("Message = %q, want %q", err.Message, "slug is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("rust-closures")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["slug"] != "rust-closures" {
		t.Errorf("Details[slug] = %v, want %q", err.Details["slug"], "rust-closures")
	}
}

func TestNewDuplicateSlug(t *testing.T) {
	err := NewDuplicateSlug("intro", "b/intro.md", "a/intro.md")

	if err.Code != ErrDuplicateSlug {
		t.Errorf("Code = %q, want %q", err.Code, ErrDuplicateSlug)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["existing_path"] != "a/intro.md" {
		t.Errorf("Details[existing_path] = %v, want a/intro.md", err.Details["existing_path"])
	}
}

func TestNewUnresolvedReference(t *testing.T) {
	err := NewUnresolvedReference("rust-async-closures", "rust-closures")

	if err.Code != ErrUnresolvedReference {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnresolvedReference)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["from"] != "rust-async-closures" || err.Details["target"] != "rust-closures" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewMalformedFrontMatter(t *testing.T) {
	err := NewMalformedFrontMatter("posts/a.md", "title: cannot be blank")

	if err.Code != ErrMalformedFrontMatter {
		t.Errorf("Code = %q, want %q", err.Code, ErrMalformedFrontMatter)
	}
	if err.Message != "posts/a.md: title: cannot be blank" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInvalidSlug(t *testing.T) {
	err := NewInvalidSlug("index.md", "no parent directory")

	if err.Code != ErrInvalidSlug {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidSlug)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["path"] != "index.md" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewInternal(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "with error", err: fmt.Errorf("disk full"), wantMsg: "disk full"},
		{name: "nil error", err: nil, wantMsg: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewInternal(tt.err)
			if err.Code != ErrInternal {
				t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
			}
			if err.Status != 500 {
				t.Errorf("Status = %d, want 500", err.Status)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
		})
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{name: "matching code", err: NewNotFound("x"), code: ErrNotFound, want: true},
		{name: "different code", err: NewNotFound("x"), code: ErrInternal, want: false},
		{name: "wrapped", err: fmt.Errorf("load: %w", NewDuplicateSlug("a", "b", "c")), code: ErrDuplicateSlug, want: true},
		{name: "plain error", err: fmt.Errorf("boom"), code: ErrInternal, want: false},
		{name: "nil", err: nil, code: ErrNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
