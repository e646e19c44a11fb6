// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/pdiddy/filings-engine/pkg/types"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		prefix   string
		want     types.DocKind
	}{
		{"pdf magic", "application/octet-stream", "%PDF-1.7 ...", types.KindPDF},
		{"pdf magic beats html declaration", "text/html", "%PDF-1.4", types.KindPDF},
		{"doctype prefix", "application/pdf", "<!DOCTYPE html><html>", types.KindHTML},
		{"html tag with leading whitespace", "", "\n  <html lang=\"en\">", types.KindHTML},
		{"html tag with BOM", "", "\xef\xbb\xbf<html>", types.KindHTML},
		{"declared pdf no magic", "application/pdf", "JVBERi0x", types.KindPDF},
		{"declared html plain text body", "text/html; charset=utf-8", "hello", types.KindHTML},
		{"nothing to go on", "application/octet-stream", "\x00\x01\x02", types.KindUnknown},
		{"empty", "", "", types.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferKind(tt.declared, []byte(tt.prefix))
			if got != tt.want {
				t.Errorf("InferKind(%q, %q) = %q, want %q", tt.declared, tt.prefix, got, tt.want)
			}
		})
	}
}
