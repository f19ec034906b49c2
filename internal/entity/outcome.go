package entity

import (
	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/llm"
)

// Outcome is the terminal result of one extraction run.
// Result is set for SUCCESS and PARTIAL; Message is set for everything else and for PARTIAL.
type Outcome struct {
	Status  constants.OutcomeStatus
	Result  *llm.ExtractionResult
	Message string

	Page            int   // 1-based page that matched; 0 when none did
	Rotations       int   // corrective rotations performed
	CapabilityCalls int   // model invocations made
	Err             error // underlying failure for NOT_DOCUMENT / FAILED, if any
}

// IsDocument reports the is_document flag the caller sees.
func (o Outcome) IsDocument() bool {
	return o.Result != nil && o.Result.IsDocument
}
