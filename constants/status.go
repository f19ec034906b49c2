package constants

// OutcomeStatus is the terminal state of one extraction run.
type OutcomeStatus string

// Stable values (these appear in logs).
const (
	OutcomeSuccess     OutcomeStatus = "SUCCESS"      // upright document, fields extracted
	OutcomePartial     OutcomeStatus = "PARTIAL"      // document found, orientation never reached 0
	OutcomeNotDocument OutcomeStatus = "NOT_DOCUMENT" // no page matched, or input rejected
	OutcomeFailed      OutcomeStatus = "FAILED"       // capability call failed; run aborted
)

// Messages reported to callers for non-success outcomes.
const (
	MsgUnsupportedFileType   = "Unsupported or unknown file type."
	MsgDocumentNotFound      = "Valid document not found in file."
	MsgOrientationExhausted  = "Failed to auto-correct document orientation after maximum attempts."
	MsgUnsupportedDocTypeFmt = "Unsupported document type: %s"
	MsgSourceFailedFmt       = "Could not process file: %v"
	MsgExtractionFailedFmt   = "LLM extraction failed: %v"
)

// MaxOrientationRetries bounds corrective re-extractions per page.
const MaxOrientationRetries = 4
