package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	// extra decoders for image sources; jpeg/png/gif come with imaging
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
)

type Config struct {
	FetchTimeout time.Duration
	MaxBytes     int64  // largest accepted source body
	MaxPixels    int64  // largest accepted image source, checked before decoding
	PDFRenderer  string // binary name or absolute path; if empty -> "pdftoppm"
	DPI          int    // rasterization DPI for PDFs, default 200
	MaxPages     int    // 0 = no limit
}

// Normalizer turns a source URL into canonical page images.
type Normalizer struct {
	cfg    Config
	http   *http.Client
	runner Runner
	logger *slog.Logger
}

type Option func(*Normalizer)

func WithHTTPClient(c *http.Client) Option {
	return func(n *Normalizer) {
		if c != nil {
			n.http = c
		}
	}
}

func WithRunner(r Runner) Option {
	return func(n *Normalizer) {
		if r != nil {
			n.runner = r
		}
	}
}

func NewNormalizer(cfg Config, logger *slog.Logger, opts ...Option) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 60 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 25 << 20
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = 40_000_000
	}
	if cfg.PDFRenderer == "" {
		cfg.PDFRenderer = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	n := &Normalizer{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.FetchTimeout},
		runner: execRunner{},
		logger: logger,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Classify maps a source URL to a container format by its path extension.
// ok is false when the URL has no extension and the format must come from the response.
func Classify(sourceURL string) (format constants.ContainerFormat, ext string, ok bool) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return constants.UNKNOWN, "", true
	}
	ext = constants.NormalizeExt(path.Ext(u.Path))
	if ext == "" {
		return constants.UNKNOWN, "", false
	}
	return constants.MapExtToFormat(ext), ext, true
}

// Normalize fetches the source once and returns its pages in order.
// Errors wrap common.ErrUnsupportedFormat or common.ErrSourceUnavailable.
func (n *Normalizer) Normalize(ctx context.Context, sourceURL string) ([]Page, error) {
	log := common.LoggerFromContext(ctx, n.logger)
	start := time.Now()

	format, ext, known := Classify(sourceURL)
	if known && format == constants.UNKNOWN {
		log.Warn("unsupported source extension", "extension", ext)
		return nil, common.UnsupportedFormat(fmt.Sprintf("unsupported file extension %q", ext))
	}

	body, contentType, err := n.fetch(ctx, log, sourceURL)
	if err != nil {
		log.Error("source fetch failed", "error", err)
		return nil, common.SourceUnavailable("fetch source", err)
	}

	if !known {
		format = constants.MapMediaTypeToFormat(contentType)
		if format == constants.UNKNOWN {
			log.Warn("unsupported source media type", "content_type", contentType)
			return nil, common.UnsupportedFormat(fmt.Sprintf("unsupported media type %q", contentType))
		}
	}

	var pages []Page
	switch format {
	case constants.PDF:
		pages, err = n.rasterisePDF(ctx, log, body)
	default:
		var p Page
		p, err = normalizeImageBytes(body, 1, n.cfg.MaxPixels)
		pages = []Page{p}
	}
	if err != nil {
		return nil, err
	}

	log.Info("source normalized",
		"format", format,
		"pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

// normalizeImageBytes reads the header first so a small file declaring huge
// dimensions is rejected before any pixel buffer is allocated.
func normalizeImageBytes(data []byte, number int, maxPixels int64) (Page, error) {
	hdr, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Page{}, common.SourceUnavailable("decode image", err)
	}
	if px := int64(hdr.Width) * int64(hdr.Height); px > maxPixels {
		return Page{}, common.SourceUnavailable("decode image",
			fmt.Errorf("image is %dx%d, above the %d pixel limit", hdr.Width, hdr.Height, maxPixels))
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Page{}, common.SourceUnavailable("decode image", err)
	}
	return normalizeImage(img, number)
}

func normalizeImage(img image.Image, number int) (Page, error) {
	p, err := NewPage(Enhance(img), number)
	if err != nil {
		return Page{}, common.SourceUnavailable("encode page", err)
	}
	return p, nil
}
