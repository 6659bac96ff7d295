package render

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/verustcode/adreport/internal/model"
)

// headingTransformer enforces a layout's heading policy on the parsed
// document: level-1 headings are always removed, levels above the policy's
// MaxLevel are removed, and kept headings get layout classes.
type headingTransformer struct {
	layout model.Layout
	policy model.HeadingPolicy
}

func (t *headingTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var drop []ast.Node

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level == 1 || h.Level > t.policy.MaxLevel {
			drop = append(drop, h)
			return ast.WalkSkipChildren, nil
		}
		h.SetAttributeString("class", []byte(fmt.Sprintf("ad-h%d ad-%s", h.Level, t.layout)))
		return ast.WalkSkipChildren, nil
	})

	for _, n := range drop {
		if p := n.Parent(); p != nil {
			p.RemoveChild(p, n)
		}
	}
}
