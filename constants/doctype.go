package constants

import (
	"strings"
)

// DocType selects the extraction schema and instructions for a request.
type DocType string

const (
	KTP      DocType = "ktp"      // Indonesian national identity card
	Passport DocType = "passport" // passport biographical data page
	Ijazah   DocType = "ijazah"   // school graduation certificate
)

var allDocTypes = []DocType{
	KTP,
	Passport,
	Ijazah,
}

func DocTypesAsStrings() []string {
	result := make([]string, len(allDocTypes))
	for i, dt := range allDocTypes {
		result[i] = string(dt)
	}
	return result
}

// ParseDocType matches the wire value exactly after trimming; doc types are lower case literals.
func ParseDocType(s string) (DocType, bool) {
	s = strings.TrimSpace(s)
	for _, dt := range allDocTypes {
		if string(dt) == s {
			return dt, true
		}
	}
	return "", false
}
