package llm

import (
	"context"

	"github.com/joseph-ayodele/docextract/constants"
)

// ExtractionResult is the validated shape we get back from the model.
// Text fields the document kind does not declare stay nil.
type ExtractionResult struct {
	IsDocument   bool    `json:"is_document"`
	Orientation  int     `json:"orientation"` // clockwise degrees: 0, 90, 180 or 270
	IDNumber     *string `json:"id_number,omitempty"`
	FullName     *string `json:"fullname,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	PlaceOfBirth *string `json:"place_of_birth,omitempty"`
	Sex          *string `json:"sex,omitempty"`         // M | F
	Nationality  *string `json:"nationality,omitempty"` // WNI/WNA or ISO 3166-1 alpha-2
}

type ExtractRequest struct {
	DocType      constants.DocType
	Image        []byte // PNG bytes
	MIMEType     string // defaults to image/png
	Schema       Schema
	Instructions string
}

// Extractor is the one capability our pipeline depends on: given an image and a
// typed schema, return a schema-conformant guess or fail.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractionResult, []byte /*rawJSON*/, error)
}
