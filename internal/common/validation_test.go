package common

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_CollectsErrors(t *testing.T) {
	v := NewValidator()
	v.Field("url", "", Required).
		Field("doc_type", "sim", OneOf("ktp", "passport")).
		Field("name", "abcdef", MaxLength(3))

	if !v.HasErrors() || len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %v", v.Errors())
	}
	err := v.Error()
	if !IsValidationError(err) {
		t.Errorf("expected ErrValidation in chain, got %v", err)
	}
	for _, want := range []string{"url", "is required", "must be one of: ktp, passport", "at most 3"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := NewValidator().Field("url", "https://x.test/a.png", Required, AbsoluteHTTPURL)
	if v.HasErrors() || v.Error() != nil || v.ErrorMessage() != "" {
		t.Errorf("unexpected errors: %v", v.Errors())
	}
}

func TestAbsoluteHTTPURL(t *testing.T) {
	tests := map[string]bool{
		"https://x.test/a.png":        true,
		"http://10.0.0.1:9000/b?c=d":  true,
		"/relative/path.png":          false,
		"ftp://x.test/a.png":          false,
		"https://":                    false,
		"not a url at all":            false,
		"https://x.test/%zz":          false,
		"HTTPS://X.TEST/UPPER.JPG":    true,
		"  https://x.test/spaced.png": true,
	}
	for in, ok := range tests {
		err := AbsoluteHTTPURL("url", in)
		if (err == nil) != ok {
			t.Errorf("AbsoluteHTTPURL(%q) = %v, want ok=%v", in, err, ok)
		}
	}
}

func TestMaxLength_CountsRunes(t *testing.T) {
	if err := MaxLength(3)("f", "äöü"); err != nil {
		t.Errorf("3 runes should pass: %v", err)
	}
	if err := MaxLength(3)("f", 42); err != nil {
		t.Errorf("non-strings are ignored: %v", err)
	}
}

func TestAppError_UnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := SourceUnavailable("fetch source", cause)

	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, cause) {
		t.Errorf("expected kind and cause in chain: %v", err)
	}
	if errors.Is(err, ErrExtractionFailure) {
		t.Error("unexpected kind")
	}
	var ae *AppError
	if !errors.As(err, &ae) || ae.Code != CodeSourceUnavailable {
		t.Errorf("expected AppError with code %s, got %v", CodeSourceUnavailable, err)
	}
	if got := err.Error(); got != "SOURCE_UNAVAILABLE: fetch source: dial tcp: timeout" {
		t.Errorf("Error() = %q", got)
	}

	if !errors.Is(WrapError(UnsupportedFormat("bad ext"), "normalize"), ErrUnsupportedFormat) {
		t.Error("WrapError should keep the chain")
	}
	if WrapError(nil, "x") != nil {
		t.Error("WrapError(nil) should be nil")
	}
}
