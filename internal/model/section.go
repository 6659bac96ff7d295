package model

// Section is a derived view of one report section.
// It is recomputed on every read and never persisted.
type Section struct {
	ID             string `json:"section_id"`
	CanonicalTitle string `json:"canonical_title"`
	RawContent     string `json:"raw_content"`
	Format         string `json:"format"`
	IsHTML         bool   `json:"is_html"`
	Parsed         Record `json:"parsed_structured,omitempty"`
	OrderIndex     int    `json:"order_index"`
}

// RenderedSection is the per-section output handed to the UI
type RenderedSection struct {
	SectionID      string `json:"section_id"`
	CanonicalTitle string `json:"canonical_title"`
	RenderedMarkup string `json:"rendered_markup"`
	IsHTML         bool   `json:"is_html"`
	// Fallback is true when the markup came from the plain paragraph splitter
	Fallback bool `json:"fallback,omitempty"`
}
