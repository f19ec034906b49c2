package llm

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
)

type FieldType string

const (
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldInteger FieldType = "integer"
)

// Field names shared by every schema.
const (
	FieldIsDocument   = "is_document"
	FieldOrientation  = "orientation"
	FieldIDNumber     = "id_number"
	FieldFullName     = "fullname"
	FieldDateOfBirth  = "date_of_birth"
	FieldPlaceOfBirth = "place_of_birth"
	FieldSex          = "sex"
	FieldNationality  = "nationality"
)

// Orientations are the only rotation values a result may carry.
var Orientations = []int{0, 90, 180, 270}

type Field struct {
	Name        string
	Type        FieldType
	Description string
	Enum        []int // integer fields only
}

// Schema is the field set a model answer must match for one document kind.
type Schema struct {
	Name        string
	Description string
	Fields      []Field

	compiled *jsonschema.Schema
}

// FieldNames lists field names in declaration order.
func (s Schema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

func (s Schema) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// JSONSchema renders a strict JSON Schema: every property required, nothing extra.
// We pass this to the provider as the structured-output constraint and use it locally to validate.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		p := map[string]any{
			"type":        string(f.Type),
			"description": f.Description,
		}
		if len(f.Enum) > 0 {
			p["enum"] = f.Enum
		}
		props[f.Name] = p
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"description":          s.Description,
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

type registryEntry struct {
	schema       Schema
	instructions string
}

// registry is built once at init and only read afterwards.
var registry = buildRegistry()

// Lookup returns the schema and extraction instructions for a document kind.
func Lookup(kind constants.DocType) (Schema, string, error) {
	e, ok := registry[kind]
	if !ok {
		return Schema{}, "", common.UnsupportedDocumentKind(string(kind))
	}
	return e.schema, e.instructions, nil
}

func buildRegistry() map[constants.DocType]registryEntry {
	ktp := Schema{
		Name:        "extract_data_from_ktp",
		Description: "Extract data from a KTP (Indonesian identity card) picture.",
		Fields: []Field{
			isDocumentField("Whether the image is the front side of a KTP (Indonesian ID card)"),
			orientationField("Clockwise rotation of the image, one of 0, 90, 180, 270. At 0 degrees the head photo of a KTP sits on the right side of the card; photo at the bottom means 90, on the left means 180, at the top means 270."),
			textField(FieldIDNumber, "The KTP identity number (NIK), 16 digits"),
			textField(FieldFullName, "Full name of the person in UPPERCASE"),
			textField(FieldDateOfBirth, "Date of birth in YYYY-MM-DD (ISO 8601)"),
			textField(FieldPlaceOfBirth, "Place of birth (city) in UPPERCASE"),
			textField(FieldSex, `Sex of the person, "M" or "F"`),
			textField(FieldNationality, `Nationality, "WNI" or "WNA"`),
		},
	}
	passport := Schema{
		Name:        "extract_data_from_passport",
		Description: "Extract data from a passport biographical data page picture.",
		Fields: []Field{
			isDocumentField("Whether the image is the biographical data page of a passport"),
			orientationField("Clockwise rotation of the image, one of 0, 90, 180, 270"),
			textField(FieldIDNumber, "The passport number"),
			textField(FieldFullName, "Full name of the person in UPPERCASE"),
			textField(FieldDateOfBirth, "Date of birth in YYYY-MM-DD (ISO 8601)"),
			textField(FieldPlaceOfBirth, "Place of birth (city) in UPPERCASE"),
			textField(FieldSex, `Sex of the person, "M" or "F"`),
			textField(FieldNationality, "Nationality as ISO 3166-1 alpha-2 code"),
		},
	}
	ijazah := Schema{
		Name:        "extract_data_from_ijazah",
		Description: "Extract data from a high school graduation certificate (Ijazah) picture.",
		Fields: []Field{
			isDocumentField("Whether the image is an Ijazah, SKL or other graduation certificate"),
			orientationField("Clockwise rotation of the image, one of 0, 90, 180, 270"),
			textField(FieldFullName, "Full name of the person in UPPERCASE"),
			textField(FieldDateOfBirth, "Date of birth in YYYY-MM-DD (ISO 8601)"),
			textField(FieldPlaceOfBirth, "Place of birth (city) in UPPERCASE"),
		},
	}

	out := map[constants.DocType]registryEntry{
		constants.KTP:      {schema: mustCompile(ktp), instructions: ktpInstructions},
		constants.Passport: {schema: mustCompile(passport), instructions: passportInstructions},
		constants.Ijazah:   {schema: mustCompile(ijazah), instructions: ijazahInstructions},
	}
	return out
}

func mustCompile(s Schema) Schema {
	c, err := compileSchema(s.Name, s.JSONSchema())
	if err != nil {
		panic(fmt.Sprintf("llm: schema %s does not compile: %v", s.Name, err))
	}
	s.compiled = c
	return s
}

func isDocumentField(desc string) Field {
	return Field{Name: FieldIsDocument, Type: FieldBoolean, Description: desc}
}

func orientationField(desc string) Field {
	return Field{Name: FieldOrientation, Type: FieldInteger, Description: desc, Enum: Orientations}
}

func textField(name, desc string) Field {
	return Field{Name: name, Type: FieldString, Description: desc + `. Empty string "" when missing or unreadable.`}
}
