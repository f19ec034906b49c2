package llm

import (
	"encoding/json"
	"strings"
)

// upperFields are normalised to upper case; the instructions already ask for it.
var upperFields = []string{FieldFullName, FieldPlaceOfBirth, FieldSex, FieldNationality}

var textFields = []string{FieldIDNumber, FieldFullName, FieldDateOfBirth, FieldPlaceOfBirth, FieldSex, FieldNationality}

// SanitizeFields normalises text fields so a mostly-right answer can still validate:
// strings are trimmed, null text fields become "" and name-like fields are upper-cased.
// is_document and orientation are left untouched.
func SanitizeFields(doc []byte) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}

	for _, k := range textFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
			m[k] = ""
		case string:
			s := strings.TrimSpace(t)
			if strings.EqualFold(s, "null") {
				s = ""
			}
			m[k] = s
		}
	}
	for _, k := range upperFields {
		if s, ok := m[k].(string); ok {
			m[k] = strings.ToUpper(s)
		}
	}

	return json.Marshal(m)
}
