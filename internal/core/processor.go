package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/preprocess"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/llm"
)

// PageSource turns a source URL into canonical pages.
type PageSource interface {
	Normalize(ctx context.Context, sourceURL string) ([]preprocess.Page, error)
}

// PageRotator re-renders a page by signed clockwise degrees.
type PageRotator interface {
	Rotate(p preprocess.Page, degreesClockwise int) (preprocess.Page, error)
}

// Processor runs the extract -> detect rotation -> re-render -> re-extract loop.
// It keeps no per-run state; one Processor serves concurrent requests.
type Processor struct {
	logger     *slog.Logger
	pages      PageSource
	rotator    PageRotator
	extractor  llm.Extractor
	maxRetries int
}

func NewProcessor(
	logger *slog.Logger,
	pages PageSource,
	rotator PageRotator,
	extractor llm.Extractor,
	maxRetries int,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if rotator == nil {
		rotator = preprocess.Rotator{}
	}
	if maxRetries < 0 {
		maxRetries = constants.MaxOrientationRetries
	}
	return &Processor{
		logger:     logger,
		pages:      pages,
		rotator:    rotator,
		extractor:  extractor,
		maxRetries: maxRetries,
	}
}

// run carries the bookkeeping of one invocation.
type run struct {
	kind         constants.DocType
	schema       llm.Schema
	instructions string
	calls        int
	rotations    int
}

// Run extracts fields from the document at sourceURL. It never returns an error:
// every failure is reported as an Outcome with a message.
func (p *Processor) Run(ctx context.Context, sourceURL string, kind constants.DocType) entity.Outcome {
	log := common.LoggerFromContext(ctx, p.logger).With("doc_type", kind)
	ctx = common.WithLogger(ctx, log)
	start := time.Now()

	out := p.run(ctx, log, sourceURL, kind)

	log.Info("processor.run.done",
		"status", out.Status,
		"page", out.Page,
		"rotations", out.Rotations,
		"capability_calls", out.CapabilityCalls,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}

func (p *Processor) run(ctx context.Context, log *slog.Logger, sourceURL string, kind constants.DocType) entity.Outcome {
	// 1) schema + instructions
	schema, instructions, err := llm.Lookup(kind)
	if err != nil {
		log.Warn("processor.unsupported_doc_type", "error", err)
		return notDocument(fmt.Sprintf(constants.MsgUnsupportedDocTypeFmt, kind), err)
	}

	// 2) source -> canonical pages
	pages, err := p.pages.Normalize(ctx, sourceURL)
	if err != nil {
		log.Warn("processor.normalize.failed", "error", err)
		if errors.Is(err, common.ErrUnsupportedFormat) {
			return notDocument(constants.MsgUnsupportedFileType, err)
		}
		return notDocument(fmt.Sprintf(constants.MsgSourceFailedFmt, err), err)
	}

	r := &run{kind: kind, schema: schema, instructions: instructions}

	// 3) first page reporting is_document wins
	for _, page := range pages {
		res, err := p.extract(ctx, r, page)
		if err != nil {
			return p.failed(log, r, page, err)
		}
		log.Debug("processor.page.extracted",
			"page", page.Number,
			"is_document", res.IsDocument,
			"orientation", res.Orientation,
		)
		if !res.IsDocument {
			continue
		}

		res, err = p.correctOrientation(ctx, log, r, page, res)
		if err != nil {
			return p.failed(log, r, page, err)
		}

		out := entity.Outcome{
			Status:          constants.OutcomeSuccess,
			Result:          &res,
			Page:            page.Number,
			Rotations:       r.rotations,
			CapabilityCalls: r.calls,
		}
		if res.Orientation != 0 {
			log.Warn("processor.orientation.exhausted",
				"page", page.Number,
				"orientation", res.Orientation,
				"attempts", r.rotations,
			)
			out.Status = constants.OutcomePartial
			out.Message = constants.MsgOrientationExhausted
		}
		return out
	}

	// 4) nothing matched
	return entity.Outcome{
		Status:          constants.OutcomeNotDocument,
		Message:         constants.MsgDocumentNotFound,
		CapabilityCalls: r.calls,
	}
}

// correctOrientation rotates by the negated reported orientation and re-extracts
// until the model reports 0 or maxRetries corrective attempts were spent.
func (p *Processor) correctOrientation(ctx context.Context, log *slog.Logger, r *run, page preprocess.Page, res llm.ExtractionResult) (llm.ExtractionResult, error) {
	current := page
	for attempts := 0; res.Orientation != 0 && attempts < p.maxRetries; attempts++ {
		rotated, err := p.rotator.Rotate(current, -res.Orientation)
		if err != nil {
			return llm.ExtractionResult{}, common.ExtractionFailure("rotate page", err)
		}
		r.rotations++
		log.Debug("processor.page.rotated",
			"page", page.Number,
			"degrees", -res.Orientation,
			"attempt", attempts+1,
		)
		current = rotated

		res, err = p.extract(ctx, r, current)
		if err != nil {
			return llm.ExtractionResult{}, err
		}
	}
	return res, nil
}

func (p *Processor) extract(ctx context.Context, r *run, page preprocess.Page) (llm.ExtractionResult, error) {
	r.calls++
	res, _, err := p.extractor.Extract(ctx, llm.ExtractRequest{
		DocType:      r.kind,
		Image:        page.PNG,
		MIMEType:     "image/png",
		Schema:       r.schema,
		Instructions: r.instructions,
	})
	if err != nil {
		return llm.ExtractionResult{}, err
	}
	// Providers validate already; this guards stub or third-party Extractors.
	if !validOrientation(res.Orientation) {
		return llm.ExtractionResult{}, common.ExtractionFailure(
			fmt.Sprintf("orientation %d is not one of %v", res.Orientation, llm.Orientations), nil)
	}
	return res, nil
}

func (p *Processor) failed(log *slog.Logger, r *run, page preprocess.Page, err error) entity.Outcome {
	log.Error("processor.extract.failed", "page", page.Number, "error", err)
	return entity.Outcome{
		Status:          constants.OutcomeFailed,
		Message:         fmt.Sprintf(constants.MsgExtractionFailedFmt, err),
		Page:            page.Number,
		Rotations:       r.rotations,
		CapabilityCalls: r.calls,
		Err:             err,
	}
}

func notDocument(msg string, err error) entity.Outcome {
	return entity.Outcome{
		Status:  constants.OutcomeNotDocument,
		Message: msg,
		Err:     err,
	}
}

func validOrientation(o int) bool {
	for _, v := range llm.Orientations {
		if o == v {
			return true
		}
	}
	return false
}
