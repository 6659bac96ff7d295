// Package assets provides the embedded stylesheet and logo for HTML and PDF export.
package assets

import (
	_ "embed"
)

// ReportCSS styles every layout of an exported report
//
//go:embed report.css
var ReportCSS string

// LogoSVG is shown on the cover page and in the PDF header
//
//go:embed logo.svg
var LogoSVG string
