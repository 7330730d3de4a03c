package render

import (
	"strings"
	"testing"
)

func TestMarkdownRendersDossierSections(t *testing.T) {
	html, err := Markdown("# 📑 Client Dossier: Acme Corp\n\n## 🏢 Background\n- Founded in 1949\n")
	if err != nil {
		t.Fatalf("Markdown err: %v", err)
	}
	if !strings.Contains(html, "<h1>📑 Client Dossier: Acme Corp</h1>") {
		t.Fatalf("expected h1, got %s", html)
	}
	if !strings.Contains(html, "<li>Founded in 1949</li>") {
		t.Fatalf("expected list item, got %s", html)
	}
}

func TestMarkdownRendersTables(t *testing.T) {
	html, err := Markdown("| Risk | Level |\n|---|---|\n| Churn | High |\n")
	if err != nil {
		t.Fatalf("Markdown err: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("expected GFM table, got %s", html)
	}
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	html, err := Markdown("before\n\n<script>alert(1)</script>\n\nafter")
	if err != nil {
		t.Fatalf("Markdown err: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html leaked into output: %s", html)
	}
}
