package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   \t\n ", ""},
		{"Hello, World!", "hello world"},
		{"Café com Ação", "cafe com acao"},
		{"  multiple   spaces\tand\nlines  ", "multiple spaces and lines"},
		{"SEO-friendly URLs (2024)", "seo friendly urls 2024"},
		{"naïve façade über", "naive facade uber"},
		{"日本語 text", "text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Olá, mundo! Ótimo conteúdo.",
		"  <b>Bold</b> & 'quoted' text ",
		"ÀÉÎÕÜ ç ñ",
		"already normalized text",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "input %q", in)
	}
}
