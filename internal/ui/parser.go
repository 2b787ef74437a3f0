package ui

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// ParseCSS parses a stylesheet and keeps its class rules. At-rules and non-class selectors are
// ignored; a rule with a selector list is recorded once per class.
func ParseCSS(src string) (*Stylesheet, error) {
	parsed, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("ui: parse css: %w", err)
	}
	sheet := &Stylesheet{}
	for _, r := range parsed.Rules {
		if r.Kind == css.AtRule || len(r.Declarations) == 0 {
			continue
		}
		props := make(map[string]string, len(r.Declarations))
		for _, d := range r.Declarations {
			props[d.Property] = d.Value
		}
		for _, sel := range r.Selectors {
			sel = strings.TrimSpace(sel)
			if len(sel) < 2 || sel[0] != '.' {
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel[1:], Props: props})
		}
	}
	return sheet, nil
}
