// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forum

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/filings-engine/internal/normalize"
	"github.com/pdiddy/filings-engine/internal/render"
	"github.com/pdiddy/filings-engine/pkg/types"
)

// threadCSS is the long-form reading stylesheet for assembled threads:
// serif body text, sans-serif title, page-break-aware post blocks.
const threadCSS = `
@page {
	size: A4;
	margin: 20mm;
}
body {
	font-family: Georgia, "Times New Roman", Times, serif;
	line-height: 1.6;
	color: #1a1a1a;
	font-size: 16px;
}
h1 {
	font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto,
		Helvetica, Arial, sans-serif;
	font-size: 28px;
	color: #2c3e50;
	border-bottom: 2px solid #eee;
	padding-bottom: 10px;
	margin-bottom: 30px;
}
.post {
	margin-bottom: 30px;
	padding-bottom: 20px;
	border-bottom: 1px solid #eee;
	page-break-inside: avoid;
}
.post-header {
	margin-bottom: 15px;
	color: #7f8c8d;
	font-size: 12px;
	font-weight: 500;
}
.post-content {
	font-size: 14px;
}
.post-content img {
	max-width: 100%;
	height: auto;
	margin: 10px 0;
	border: 1px solid #eee;
	border-radius: 4px;
}
blockquote {
	border-left: 4px solid #ddd;
	margin: 0;
	padding-left: 15px;
	color: #666;
}
code {
	background: #f4f4f4;
	padding: 2px 4px;
	border-radius: 3px;
	font-family: monospace;
}
pre {
	background: #f4f4f4;
	padding: 10px;
	border-radius: 5px;
	overflow-x: auto;
}
.references {
	page-break-before: always;
}
.references li {
	font-size: 13px;
	margin-bottom: 6px;
}
`

var threadTemplate = template.Must(template.New("thread").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>` + threadCSS + `</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="thread-container">
{{range .Posts}}<div class="post">
	<div class="post-header">{{.Date}}</div>
	<div class="post-content">{{.Content}}</div>
</div>
{{end}}</div>
{{if .References}}<div class="references">
<h1>References</h1>
<ul>
{{range .References}}<li><a href="{{.URL}}">{{.Title}}</a>{{if .Clicks}} ({{.Clicks}} clicks){{end}}</li>
{{end}}</ul>
</div>{{end}}
</body>
</html>
`))

type threadPage struct {
	Title      string
	Posts      []renderedPost
	References []Reference
}

type renderedPost struct {
	Date    string
	Content template.HTML
}

// Assembler turns a thread URL into one PDF artifact: all visible posts in
// chronological order, followed by the click-ranked reference list.
type Assembler struct {
	client   *Client
	renderer render.Renderer
}

// NewAssembler constructs an assembler.
func NewAssembler(client *Client, renderer render.Renderer) *Assembler {
	return &Assembler{client: client, renderer: renderer}
}

// Assemble fetches the whole thread and writes the PDF to destPath. A
// failure on any page aborts the assembly with a ThreadFetchError and no
// artifact; a partial thread would silently misrepresent the discussion.
func (a *Assembler) Assemble(ctx context.Context, threadURL, destPath string) (types.Artifact, error) {
	slug, topicID, err := ParseThreadURL(threadURL)
	if err != nil {
		return types.Artifact{}, &types.ThreadFetchError{URL: threadURL, Err: err}
	}

	topic, err := a.client.FetchTopic(ctx, slug, topicID)
	if err != nil {
		return types.Artifact{}, err
	}

	var posts []Post
	for offset := 0; ; offset += a.client.PageSize() {
		page, err := a.client.FetchPosts(ctx, topicID, offset)
		if err != nil {
			return types.Artifact{}, err
		}
		posts = append(posts, page...)
		if len(page) < a.client.PageSize() {
			break
		}
	}

	html, err := a.renderThread(topic, posts)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("rendering thread %d: %w", topicID, err)
	}

	// The artifact check here matches the normalizer's: PDF magic, not just
	// non-empty bytes, with one fresh print before reporting failure.
	pdf, err := a.renderer.PrintHTML(ctx, html)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("printing thread %d: %w", topicID, err)
	}
	if normalize.InferKind("", pdf) != types.KindPDF {
		pdf, err = a.renderer.PrintHTML(ctx, html)
		if err != nil {
			return types.Artifact{}, fmt.Errorf("printing thread %d: %w", topicID, err)
		}
		if normalize.InferKind("", pdf) != types.KindPDF {
			return types.Artifact{}, &types.EmptyArtifactError{Path: destPath}
		}
	}

	if err := writePDF(destPath, pdf); err != nil {
		return types.Artifact{}, err
	}
	return types.Artifact{
		Path:        destPath,
		Size:        int64(len(pdf)),
		ContentType: "application/pdf",
	}, nil
}

// renderThread builds the printable HTML document.
func (a *Assembler) renderThread(topic *Topic, posts []Post) (string, error) {
	page := threadPage{
		Title:      topic.Title,
		References: References(topic),
	}
	for _, p := range posts {
		if p.Hidden {
			continue
		}
		page.Posts = append(page.Posts, renderedPost{
			Date:    p.CreatedAt.Format("January 2, 2006 at 3:04 PM"),
			Content: template.HTML(cleanPost(p.Cooked)),
		})
	}

	var buf bytes.Buffer
	if err := threadTemplate.Execute(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cleanPost strips forum chrome from a post body: avatars, quote metadata
// rows, and lightbox decorations. The text content is left untouched; on
// parse trouble the body passes through unchanged.
func cleanPost(cooked string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cooked))
	if err != nil {
		return cooked
	}
	doc.Find("img.avatar, div.meta, .lightbox-wrapper .meta, aside.quote .title img").Remove()
	out, err := doc.Find("body").Html()
	if err != nil {
		return cooked
	}
	return out
}

// writePDF lands the bytes through a temp file in the destination
// directory, renaming on success.
func writePDF(destPath string, pdf []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".thread-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, bytes.NewReader(pdf))
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
