package constants

import (
	"mime"
	"strings"
)

// ContainerFormat is the classification of a source document.
type ContainerFormat string

const (
	IMAGE ContainerFormat = "IMAGE"
	PDF   ContainerFormat = "PDF"
	// UNKNOWN is never a valid format; callers reject it.
	UNKNOWN ContainerFormat = ""
)

// imageExtensions holds extensions we can decode (stdlib + x/image codecs).
var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
}

var imageMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
	"image/tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat classifies a file extension (with or without the dot).
func MapExtToFormat(ext string) ContainerFormat {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if _, ok := imageExtensions[ext]; ok {
		return IMAGE
	}
	return UNKNOWN
}

// MapMediaTypeToFormat classifies a Content-Type header value. Parameters are ignored.
func MapMediaTypeToFormat(contentType string) ContainerFormat {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return UNKNOWN
	}
	mt = strings.ToLower(mt)
	if mt == "application/pdf" {
		return PDF
	}
	if _, ok := imageMediaTypes[mt]; ok {
		return IMAGE
	}
	return UNKNOWN
}
