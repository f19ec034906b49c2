package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/docextract/internal/common"
)

// rasterisePDF renders every page with pdftoppm and normalises each one independently.
func (n *Normalizer) rasterisePDF(ctx context.Context, logger *slog.Logger, data []byte) ([]Page, error) {
	tmpDir, err := os.MkdirTemp("", "docx-pdf-*")
	if err != nil {
		return nil, common.SourceUnavailable("create temp dir", err)
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, common.SourceUnavailable("write pdf", err)
	}

	// pdftoppm -r <dpi> -png [-l <max>] <in.pdf> <tmp/page>
	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(n.cfg.DPI), "-png"}
	if n.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(n.cfg.MaxPages))
	}
	args = append(args, in, prefix)
	if _, errb, err := n.runner.Run(ctx, n.cfg.PDFRenderer, logger, args...); err != nil {
		return nil, common.SourceUnavailable("render pdf", fmt.Errorf("%w: %s", err, truncate(strings.TrimSpace(string(errb)), 512)))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, common.SourceUnavailable("render pdf", errors.New("no pages rendered"))
	}
	files, err := orderPages(prefix, matches)
	if err != nil {
		return nil, common.SourceUnavailable("render pdf", err)
	}

	pages := make([]Page, 0, len(files))
	for _, f := range files {
		img, err := imaging.Open(f.path)
		if err != nil {
			return nil, common.SourceUnavailable(fmt.Sprintf("decode page %d", f.number), err)
		}
		p, err := normalizeImage(img, f.number)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

type pageFile struct {
	path   string
	number int
}

// orderPages sorts prefix-N.png files by N; pdftoppm zero-pads N by page count.
func orderPages(prefix string, matches []string) ([]pageFile, error) {
	out := make([]pageFile, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			return nil, fmt.Errorf("unexpected page file %q", filepath.Base(m))
		}
		out = append(out, pageFile{path: m, number: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out, nil
}
