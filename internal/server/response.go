package server

import (
	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// ExtractRequest is the body of POST /api/extract-data.
type ExtractRequest struct {
	URL     string `json:"url"`
	DocType string `json:"doc_type"`
}

// ExtractResponse is the wire shape of an extraction outcome. Absent values
// serialize as null.
type ExtractResponse struct {
	IsDocument   bool    `json:"is_document"`
	Orientation  *int    `json:"orientation"`
	IDNumber     *string `json:"id_number"`
	FullName     *string `json:"fullname"`
	DateOfBirth  *string `json:"date_of_birth"`
	PlaceOfBirth *string `json:"place_of_birth"`
	Sex          *string `json:"sex"`
	Nationality  *string `json:"nationality"`
	Message      *string `json:"message"`
}

// ErrorResponse is returned for requests that never reach the processor.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToResponse maps an outcome onto the wire shape.
func ToResponse(o entity.Outcome) ExtractResponse {
	var resp ExtractResponse
	if o.Message != "" {
		msg := o.Message
		resp.Message = &msg
	}

	switch o.Status {
	case constants.OutcomeSuccess, constants.OutcomePartial:
		if o.Result == nil {
			return resp
		}
		r := o.Result
		orientation := r.Orientation
		resp.IsDocument = r.IsDocument
		resp.Orientation = &orientation
		resp.IDNumber = copyString(r.IDNumber)
		resp.FullName = copyString(r.FullName)
		resp.DateOfBirth = copyString(r.DateOfBirth)
		resp.PlaceOfBirth = copyString(r.PlaceOfBirth)
		resp.Sex = copyString(r.Sex)
		resp.Nationality = copyString(r.Nationality)
	}
	return resp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
