package validation_test

import (
	"errors"
	"testing"

	"github.com/yigit/jobboard/internal/pkg/validation"
)

type applyBody struct {
	ResumeURL *string `json:"resume_url" validate:"omitempty,url"`
	Status    string  `json:"status" validate:"required,oneof=pending reviewed accepted rejected"`
	Name      string  `json:"name" validate:"notblank,min=2"`
}

func TestFormatErrors_UsesJSONNames(t *testing.T) {
	bad := "not a url"
	err := validation.Standalone().Struct(applyBody{ResumeURL: &bad, Status: "hired", Name: "  "})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	fields := validation.FormatErrors(err)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}

	want := map[string]string{
		"resume_url": "resume_url must be a valid URL",
		"status":     "status must be one of: pending, reviewed, accepted, rejected",
		"name":       "name is required",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestFormatErrors_NonValidationError(t *testing.T) {
	fields := validation.FormatErrors(errors.New("unexpected EOF"))
	if len(fields) != 1 || fields[0].Field != "" || fields[0].Message != "unexpected EOF" {
		t.Errorf("unexpected fields: %+v", fields)
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://cdn.example.com/cv.pdf", true},
		{"http://localhost:8080/resume", true},
		{"cv.pdf", false},
		{"", false},
		{"ftp//broken", false},
	}
	for _, tt := range tests {
		if got := validation.IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsEmail(t *testing.T) {
	if !validation.IsEmail("Jane.Doe@Example.com") {
		t.Error("valid email rejected")
	}
	if validation.IsEmail("jane@") {
		t.Error("invalid email accepted")
	}
}
