package constants

import "testing"

func TestParseDocType(t *testing.T) {
	for _, s := range []string{"ktp", " passport ", "ijazah"} {
		if _, ok := ParseDocType(s); !ok {
			t.Errorf("ParseDocType(%q) should succeed", s)
		}
	}
	for _, s := range []string{"", "KTP", "sim", "diploma"} {
		if _, ok := ParseDocType(s); ok {
			t.Errorf("ParseDocType(%q) should fail", s)
		}
	}
}

func TestMapFormats(t *testing.T) {
	ext := map[string]ContainerFormat{
		".PDF": PDF, "jpeg": IMAGE, ".tiff": IMAGE, "txt": UNKNOWN, "": UNKNOWN, "heic": UNKNOWN,
	}
	for in, want := range ext {
		if got := MapExtToFormat(in); got != want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", in, got, want)
		}
	}
	media := map[string]ContainerFormat{
		"application/pdf":          PDF,
		"image/JPEG":               IMAGE,
		"image/png; charset=utf-8": IMAGE,
		"text/html":                UNKNOWN,
		"":                         UNKNOWN,
	}
	for in, want := range media {
		if got := MapMediaTypeToFormat(in); got != want {
			t.Errorf("MapMediaTypeToFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
