// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render converts handbook HTML into markdown documents.
//
// A Renderer wraps a generic HTML-to-markdown converter (ATX headings,
// fenced code, "*" emphasis, tables) and layers an ordered list of Rules on
// top of it. Rules are supplied at construction time so each one can be
// exercised on its own.
package render

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

const (
	emDelimiter     = "*"
	strongDelimiter = "**"
	fence           = "```"
)

// Rule rewrites elements named in Tags for which Match reports true.
// Replace receives the already-converted markdown of the element's children
// and returns the markdown that stands in for the whole element.
type Rule struct {
	Name    string
	Tags    []string
	Match   func(sel *goquery.Selection) bool
	Replace func(content string, sel *goquery.Selection) string
}

// Renderer converts HTML fragments to markdown. It is safe for reuse: the
// same input always produces the same output.
type Renderer struct {
	conv  *md.Converter
	rules []Rule
}

// New returns a Renderer applying rules in the given order. When several
// rules match the same element, the earliest one wins.
func New(rules ...Rule) *Renderer {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:    "atx",
		CodeBlockStyle:  "fenced",
		Fence:           fence,
		EmDelimiter:     emDelimiter,
		StrongDelimiter: strongDelimiter,
	})
	conv.Use(plugin.Table())

	// A tag with any registered rule loses the converter's default
	// passthrough, so tags without a built-in rule get one back at the
	// lowest precedence.
	if tags := passthroughTags(rules); len(tags) > 0 {
		conv.AddRules(md.Rule{
			Filter: tags,
			Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
				return md.String(content)
			},
		})
	}

	// The converter consults the most recently added rule first, so
	// register in reverse to keep list order as precedence order.
	for i := len(rules) - 1; i >= 0; i-- {
		conv.AddRules(adapt(rules[i]))
	}

	return &Renderer{conv: conv, rules: rules}
}

// Rules returns the rules the renderer was built with.
func (r *Renderer) Rules() []Rule {
	return r.rules
}

// builtinTags are the elements the commonmark rules and the table plugin
// already convert.
var builtinTags = map[string]bool{
	"ul": true, "ol": true, "li": true, "p": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"strong": true, "b": true, "i": true, "em": true, "img": true, "a": true,
	"code": true, "kbd": true, "samp": true, "tt": true, "pre": true,
	"hr": true, "br": true, "blockquote": true, "noscript": true,
	"table": true, "tr": true, "th": true, "td": true,
}

func passthroughTags(rules []Rule) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, rule := range rules {
		for _, tag := range rule.Tags {
			if builtinTags[tag] || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func adapt(rule Rule) md.Rule {
	return md.Rule{
		Filter: rule.Tags,
		Replacement: func(content string, sel *goquery.Selection, _ *md.Options) *string {
			if rule.Match != nil && !rule.Match(sel) {
				// Fall through to the next rule for this tag.
				return nil
			}
			return md.String(rule.Replace(content, sel))
		},
	}
}

// Body converts an HTML fragment to markdown.
func (r *Renderer) Body(fragment string) (string, error) {
	out, err := r.conv.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Render builds the full document: a level-1 heading from title, a blank
// line, then the converted body.
func (r *Renderer) Render(title, fragment string) (string, error) {
	body, err := r.Body(fragment)
	if err != nil {
		return "", err
	}
	return "# " + Title(title) + "\n\n" + body, nil
}

// Title decodes HTML entities in a rendered title.
func Title(rendered string) string {
	return strings.TrimSpace(html.UnescapeString(rendered))
}
