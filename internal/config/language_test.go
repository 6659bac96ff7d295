package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty defaults to Dutch", "", "nl"},
		{"whitespace defaults to Dutch", "  ", "nl"},
		{"dutch", "nl", "nl"},
		{"regional", "en-GB", "en-GB"},
		{"upper case", "NL", "nl"},
		{"invalid falls back", "not a tag!", "nl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.in).String())
		})
	}
}

func TestLanguageConfig_Base(t *testing.T) {
	assert.Equal(t, "en", ParseLanguage("en-US").Base())
	assert.Equal(t, language.Dutch, ParseLanguage("").Tag())
}

func TestRenderConfig_GetLanguage(t *testing.T) {
	cfg := RenderConfig{Language: "de"}
	assert.Equal(t, "de", cfg.GetLanguage().String())
}
