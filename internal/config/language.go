// Package config provides configuration management for the application.
package config

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is the report language when none is configured
var DefaultLanguage = language.Dutch

// LanguageConfig provides language-related configuration utilities
type LanguageConfig struct {
	tag language.Tag
}

// ParseLanguage parses an ISO language tag.
// Empty or unparseable tags fall back to Dutch.
func ParseLanguage(langTag string) *LanguageConfig {
	if strings.TrimSpace(langTag) == "" {
		return &LanguageConfig{tag: DefaultLanguage}
	}

	tag, err := language.Parse(langTag)
	if err != nil {
		tag, err = language.Parse(strings.ToLower(langTag))
		if err != nil {
			tag = DefaultLanguage
		}
	}
	return &LanguageConfig{tag: tag}
}

// Tag returns the underlying language tag
func (lc *LanguageConfig) Tag() language.Tag {
	return lc.tag
}

// String returns the language tag as a string (e.g., "nl", "en-GB")
func (lc *LanguageConfig) String() string {
	return lc.tag.String()
}

// Base returns the base language code (e.g., "nl")
func (lc *LanguageConfig) Base() string {
	base, _ := lc.tag.Base()
	return base.String()
}

// GetLanguage returns the configured report language
func (c *RenderConfig) GetLanguage() *LanguageConfig {
	return ParseLanguage(c.Language)
}
