// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/filings-engine/internal/httputil"
	"github.com/pdiddy/filings-engine/internal/render"
	"github.com/pdiddy/filings-engine/pkg/types"
)

// Normalizer turns a DocumentReference into a PDF artifact at a destination
// path. Native PDFs are downloaded, HTML pages are printed through the
// renderer, and viewer pages are unwrapped to the PDF they embed.
type Normalizer struct {
	client   *http.Client
	renderer render.Renderer
	cfg      types.HTTPConfig
}

// New constructs a Normalizer. The renderer may be a lazy handle; it is only
// touched when an HTML path is taken.
func New(client *http.Client, renderer render.Renderer, cfg types.HTTPConfig) *Normalizer {
	return &Normalizer{client: client, renderer: renderer, cfg: cfg}
}

// Normalize produces the artifact for ref at destPath. The artifact is
// always a PDF regardless of the source kind. On any failure no file is
// left at destPath.
func (n *Normalizer) Normalize(ctx context.Context, ref types.DocumentReference, destPath string) (types.Artifact, error) {
	switch ref.Kind {
	case types.KindViewer:
		embedded, err := n.resolveViewer(ctx, ref.URL)
		if err != nil {
			return types.Artifact{}, err
		}
		return n.downloadPDF(ctx, embedded, destPath, true)
	case types.KindHTML:
		return n.renderPage(ctx, ref.URL, destPath)
	default:
		// PDF and unknown kinds both start as downloads; the sniff pass
		// re-routes mislabeled HTML.
		return n.downloadPDF(ctx, ref.URL, destPath, true)
	}
}

// downloadPDF fetches rawURL and writes it to destPath if the body really is
// a PDF. When the body turns out to be HTML and reclassify is true, the URL
// is re-routed through the renderer exactly once.
func (n *Normalizer) downloadPDF(ctx context.Context, rawURL, destPath string, reclassify bool) (types.Artifact, error) {
	body, declared, err := n.fetch(ctx, rawURL)
	if err != nil {
		return types.Artifact{}, err
	}
	defer body.Close()

	prefix := make([]byte, 512)
	nRead, readErr := io.ReadFull(body, prefix)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return types.Artifact{}, &types.FetchError{URL: rawURL, Err: readErr}
	}
	prefix = prefix[:nRead]

	switch InferKind(declared, prefix) {
	case types.KindHTML:
		if !reclassify {
			return types.Artifact{}, &types.UnsupportedContentError{
				URL:    rawURL,
				Reason: "expected PDF, got HTML",
			}
		}
		return n.renderPage(ctx, rawURL, destPath)
	case types.KindPDF:
		// Fall through to the write below.
	default:
		return types.Artifact{}, &types.UnsupportedContentError{
			URL:    rawURL,
			Reason: fmt.Sprintf("unrecognized content (declared %q)", declared),
		}
	}

	if err := writeArtifact(destPath, io.MultiReader(bytes.NewReader(prefix), body)); err != nil {
		return types.Artifact{}, err
	}
	return n.verify(ctx, rawURL, destPath, true)
}

// renderPage prints rawURL to PDF via the headless renderer. Like downloads,
// a render whose output fails the integrity check gets one fresh attempt
// before the failure is reported.
func (n *Normalizer) renderPage(ctx context.Context, rawURL, destPath string) (types.Artifact, error) {
	art, err := n.renderOnce(ctx, rawURL, destPath)
	var emptyErr *types.EmptyArtifactError
	if err != nil && errors.As(err, &emptyErr) {
		return n.renderOnce(ctx, rawURL, destPath)
	}
	return art, err
}

func (n *Normalizer) renderOnce(ctx context.Context, rawURL, destPath string) (types.Artifact, error) {
	pdf, err := n.renderer.PrintPDF(ctx, rawURL)
	if err != nil {
		return types.Artifact{}, &types.FetchError{URL: rawURL, Err: err}
	}
	if err := writeArtifact(destPath, bytes.NewReader(pdf)); err != nil {
		return types.Artifact{}, err
	}
	return n.verify(ctx, rawURL, destPath, false)
}

// verify runs the post-write integrity check: the artifact must be non-empty
// and carry the PDF magic. A bad artifact is deleted and reported as an
// EmptyArtifactError; when retriable, one fresh download is attempted first.
// Rendered output takes its retry in renderPage instead.
func (n *Normalizer) verify(ctx context.Context, rawURL, destPath string, retriable bool) (types.Artifact, error) {
	info, err := os.Stat(destPath)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("checking artifact %s: %w", destPath, err)
	}

	ok := info.Size() > 0
	if ok {
		head := make([]byte, len(pdfMagic))
		f, openErr := os.Open(destPath)
		if openErr != nil {
			return types.Artifact{}, fmt.Errorf("checking artifact %s: %w", destPath, openErr)
		}
		m, _ := io.ReadFull(f, head)
		f.Close()
		ok = bytes.HasPrefix(head[:m], pdfMagic)
	}
	if ok {
		return types.Artifact{Path: destPath, Size: info.Size(), ContentType: "application/pdf"}, nil
	}

	os.Remove(destPath)
	if retriable {
		if art, err := n.downloadOnce(ctx, rawURL, destPath); err == nil {
			return art, nil
		}
		os.Remove(destPath)
	}
	return types.Artifact{}, &types.EmptyArtifactError{Path: destPath}
}

// downloadOnce is the integrity-retry path: a single fetch-and-write with no
// reclassification and no further retries.
func (n *Normalizer) downloadOnce(ctx context.Context, rawURL, destPath string) (types.Artifact, error) {
	body, _, err := n.fetch(ctx, rawURL)
	if err != nil {
		return types.Artifact{}, err
	}
	defer body.Close()

	if err := writeArtifact(destPath, body); err != nil {
		return types.Artifact{}, err
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return types.Artifact{}, err
	}
	head := make([]byte, len(pdfMagic))
	f, err := os.Open(destPath)
	if err != nil {
		return types.Artifact{}, err
	}
	m, _ := io.ReadFull(f, head)
	f.Close()
	if info.Size() == 0 || !bytes.HasPrefix(head[:m], pdfMagic) {
		return types.Artifact{}, &types.EmptyArtifactError{Path: destPath}
	}
	return types.Artifact{Path: destPath, Size: info.Size(), ContentType: "application/pdf"}, nil
}

// resolveViewer loads a viewer page and extracts the URL of the PDF it
// wraps: an iframe, embed, or object source, or failing that the first
// anchor pointing at a .pdf. The result is resolved against the page URL.
func (n *Normalizer) resolveViewer(ctx context.Context, pageURL string) (string, error) {
	body, _, err := n.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", &types.FetchError{URL: pageURL, Err: err}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", &types.FetchError{URL: pageURL, Err: err}
	}

	var found string
	doc.Find("iframe[src], embed[src], object[data]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if src == "" {
			src, _ = s.Attr("data")
		}
		if strings.TrimSpace(src) != "" {
			found = src
			return false
		}
		return true
	})
	if found == "" {
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			if strings.HasSuffix(strings.ToLower(href), ".pdf") {
				found = href
				return false
			}
			return true
		})
	}
	if found == "" {
		return "", &types.UnsupportedContentError{
			URL:    pageURL,
			Reason: "viewer page embeds no document",
		}
	}

	rel, err := url.Parse(strings.TrimSpace(found))
	if err != nil {
		return "", &types.UnsupportedContentError{URL: pageURL, Reason: "viewer embeds malformed URL"}
	}
	return base.ResolveReference(rel).String(), nil
}

// fetch GETs rawURL with the standard headers and retry policy and returns
// the open body with the declared content type.
func (n *Normalizer) fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &types.FetchError{URL: rawURL, Err: err}
	}
	if n.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", n.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, n.client, req)
	if err != nil {
		return nil, "", &types.FetchError{URL: rawURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", &types.FetchError{URL: rawURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// writeArtifact streams r to destPath through a temp file in the same
// directory, renaming on success so partial downloads never land.
func writeArtifact(destPath string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".normalize-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing artifact: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
