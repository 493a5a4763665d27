// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	glossaryHiddenClass = "glossary-item-hidden-content"
	brushMarker         = "brush:"
)

// containerTags are the inline and block elements the class-based drop
// rules inspect.
var containerTags = []string{
	"span", "div", "p", "a", "li", "code", "button", "section", "aside",
	"strong", "em", "small", "label", "details", "summary",
}

// toggleClasses mark the expand/collapse anchors around code references.
var toggleClasses = []string{"show-complete-source", "less-complete-source"}

// brushLanguages maps class substrings to fence languages. First match wins.
var brushLanguages = []struct {
	needle, lang string
}{
	{"css", "css"},
	{"bash", "bash"},
	{"php", "php"},
	{"yaml", "yaml"},
	{"xml", "xml"},
	{"jscript", "javascript"},
}

// DefaultRules returns the handbook rule set in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		HiddenGlossary(),
		CodeToggle(),
		DefinitionTerm(),
		BrushCodeBlock(),
	}
}

// HiddenGlossary drops glossary tooltips whose class is exactly the hidden
// content marker.
func HiddenGlossary() Rule {
	return Rule{
		Name: "hidden-glossary",
		Tags: containerTags,
		Match: func(sel *goquery.Selection) bool {
			class, ok := sel.Attr("class")
			return ok && class == glossaryHiddenClass
		},
		Replace: drop,
	}
}

// CodeToggle drops the "show/less complete source" toggles, usually anchors.
func CodeToggle() Rule {
	return Rule{
		Name: "code-toggle",
		Tags: containerTags,
		Match: func(sel *goquery.Selection) bool {
			class := sel.AttrOr("class", "")
			for _, c := range toggleClasses {
				if strings.Contains(class, c) {
					return true
				}
			}
			return false
		},
		Replace: drop,
	}
}

// DefinitionTerm renders <dt> content in strong delimiters.
func DefinitionTerm() Rule {
	return Rule{
		Name: "definition-term",
		Tags: []string{"dt"},
		Replace: func(content string, _ *goquery.Selection) string {
			content = strings.TrimSpace(content)
			if content == "" {
				return ""
			}
			return "\n" + strongDelimiter + content + strongDelimiter + "\n"
		},
	}
}

// BrushCodeBlock turns syntax-highlighter <pre class="brush: ..."> blocks
// into fenced code, keeping the raw source rather than the converted text.
func BrushCodeBlock() Rule {
	return Rule{
		Name: "brush-code-block",
		Tags: []string{"pre"},
		Match: func(sel *goquery.Selection) bool {
			return strings.Contains(sel.AttrOr("class", ""), brushMarker)
		},
		Replace: func(_ string, sel *goquery.Selection) string {
			inner, err := sel.Html()
			if err != nil {
				inner = sel.Text()
			}
			code := strings.TrimRight(CleanCode(inner), "\n")
			return "\n\n" + fence + BrushLanguage(sel.AttrOr("class", "")) + "\n" + code + "\n" + fence + "\n\n"
		},
	}
}

// BrushLanguage returns the fence language for a brush class attribute, or
// "" when none of the known languages appear in it.
func BrushLanguage(class string) string {
	for _, b := range brushLanguages {
		if strings.Contains(class, b.needle) {
			return b.lang
		}
	}
	return ""
}

// unescape is one literal find/replace pass. With lineStart set, only
// occurrences at the start of a line are replaced.
type unescape struct {
	from, to  string
	lineStart bool
}

// unescapes undo HTML entities and backslash escapes of markdown
// punctuation. Order matters: "\\" runs first and "&amp;" last.
var unescapes = []unescape{
	{from: `\\`, to: `\`},
	{from: `\*`, to: `*`},
	{from: `\-`, to: `-`},
	{from: `\+`, to: `+`, lineStart: true},
	{from: `\=`, to: `=`},
	{from: "\\`", to: "`"},
	{from: `\~~~`, to: `~~~`},
	{from: `\[`, to: `[`},
	{from: `\]`, to: `]`},
	{from: `\>`, to: `>`},
	{from: `\_`, to: `_`},
	{from: `&quot;`, to: `"`},
	{from: `&#34;`, to: `"`},
	{from: `&#39;`, to: `'`},
	{from: `&lt;`, to: `<`},
	{from: `&gt;`, to: `>`},
	{from: `&amp;`, to: `&`},
}

var (
	lineStartPatterns = compileLineStart(unescapes)
	leadingBreaks     = regexp.MustCompile(`^(?:<br\s*/?>)+\n?\n?`)
)

func compileLineStart(passes []unescape) map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, p := range passes {
		if p.lineStart {
			m[p.from] = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(p.from))
		}
	}
	return m
}

// CleanCode turns the inner HTML of a highlighted block back into source
// text: entities and markdown escapes are undone, leading <br> tags (and
// the blank line after them) are removed, a wrapping <p> is removed, and a
// single leading newline is dropped.
func CleanCode(inner string) string {
	s := inner
	for _, p := range unescapes {
		if p.lineStart {
			s = lineStartPatterns[p.from].ReplaceAllLiteralString(s, p.to)
			continue
		}
		s = strings.ReplaceAll(s, p.from, p.to)
	}

	s = leadingBreaks.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "<p>")
	s = strings.TrimSuffix(s, "</p>")
	s = strings.TrimPrefix(s, "\n")
	return s
}

func drop(string, *goquery.Selection) string { return "" }
