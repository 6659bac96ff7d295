package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StructuredDataKey is the reserved content key holding backend-confirmed structured data
const StructuredDataKey = "structured_data"

// Content formats a section may declare
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatHTML     = "html"
)

// SectionContent is one section value from the report content map.
// The backend sends either a plain string or an object with a content or text field.
type SectionContent struct {
	Text string `json:"text"`
	// Format is the declared format, empty when the backend did not declare one
	Format string `json:"format,omitempty"`
	IsHTML bool   `json:"is_html,omitempty"`
}

// EffectiveFormat resolves the declared format, defaulting to markdown
func (c SectionContent) EffectiveFormat() string {
	if c.IsHTML {
		return FormatHTML
	}
	if c.Format == "" {
		return FormatMarkdown
	}
	return strings.ToLower(c.Format)
}

// sectionObject is the object form of a section value
type sectionObject struct {
	Content     *string `json:"content"`
	Text        *string `json:"text"`
	Format      string  `json:"format"`
	IsHTML      bool    `json:"is_html"`
	IsHTMLCamel bool    `json:"isHtml"`
}

// ReportContent is the section map of a report.
// Key encounter order from the wire is preserved so section ordering stays deterministic.
type ReportContent struct {
	keys       []string
	sections   map[string]SectionContent
	structured map[string]any
}

// NewReportContent creates an empty content map
func NewReportContent() ReportContent {
	return ReportContent{sections: make(map[string]SectionContent)}
}

// Set adds or replaces a section, keeping its original position when replacing
func (c *ReportContent) Set(id string, sc SectionContent) {
	if c.sections == nil {
		c.sections = make(map[string]SectionContent)
	}
	if _, ok := c.sections[id]; !ok {
		c.keys = append(c.keys, id)
	}
	c.sections[id] = sc
}

// SetText adds a plain markdown section
func (c *ReportContent) SetText(id, text string) {
	c.Set(id, SectionContent{Text: text})
}

// SetStructuredData sets the backend structured data payload
func (c *ReportContent) SetStructuredData(data map[string]any) {
	c.structured = data
}

// Keys returns the section keys in encounter order, excluding structured_data
func (c ReportContent) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of sections
func (c ReportContent) Len() int {
	return len(c.keys)
}

// Section returns the section content for id
func (c ReportContent) Section(id string) (SectionContent, bool) {
	sc, ok := c.sections[id]
	return sc, ok
}

// Text returns the raw text of a section, or empty if absent
func (c ReportContent) Text(id string) string {
	return c.sections[id].Text
}

// StructuredData returns the backend structured data, nil when absent
func (c ReportContent) StructuredData() map[string]any {
	return c.structured
}

// HasStructuredData reports whether the backend supplied non-empty structured data
func (c ReportContent) HasStructuredData() bool {
	return len(c.structured) > 0
}

// UnmarshalJSON decodes the content object token by token to keep key order
func (c *ReportContent) UnmarshalJSON(data []byte) error {
	*c = NewReportContent()

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("report content: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("report content: expected string key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("report content: section %q: %w", key, err)
		}

		if key == StructuredDataKey {
			var structured map[string]any
			if err := json.Unmarshal(raw, &structured); err != nil {
				return fmt.Errorf("report content: structured_data: %w", err)
			}
			c.structured = structured
			continue
		}

		sc, err := decodeSection(raw)
		if err != nil {
			return fmt.Errorf("report content: section %q: %w", key, err)
		}
		c.Set(key, sc)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// decodeSection accepts a string, an object with content or text, or null.
// Any other JSON value is kept as its literal text.
func decodeSection(raw json.RawMessage) (SectionContent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return SectionContent{}, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return SectionContent{}, err
		}
		return SectionContent{Text: s}, nil
	case '{':
		var obj sectionObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return SectionContent{}, err
		}
		sc := SectionContent{Format: obj.Format, IsHTML: obj.IsHTML || obj.IsHTMLCamel}
		switch {
		case obj.Content != nil:
			sc.Text = *obj.Content
		case obj.Text != nil:
			sc.Text = *obj.Text
		}
		if strings.EqualFold(sc.Format, FormatHTML) {
			sc.IsHTML = true
		}
		return sc, nil
	default:
		return SectionContent{Text: string(trimmed)}, nil
	}
}

// MarshalJSON writes sections in encounter order followed by structured_data
func (c ReportContent) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		sc := c.sections[key]
		var v []byte
		if sc.Format == "" && !sc.IsHTML {
			v, err = json.Marshal(sc.Text)
		} else {
			v, err = json.Marshal(struct {
				Content string `json:"content"`
				Format  string `json:"format,omitempty"`
				IsHTML  bool   `json:"is_html,omitempty"`
			}{sc.Text, sc.Format, sc.IsHTML})
		}
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}

	if c.structured != nil {
		if len(c.keys) > 0 {
			buf.WriteByte(',')
		}
		v, err := json.Marshal(c.structured)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"` + StructuredDataKey + `":`)
		buf.Write(v)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
