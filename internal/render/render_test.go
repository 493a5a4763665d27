// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Heading(t *testing.T) {
	r := New(DefaultRules()...)

	doc, err := r.Render("Plugin Basics", "<p>Hello world.</p>")
	require.NoError(t, err)
	assert.Equal(t, "# Plugin Basics\n\nHello world.", doc)
}

func TestRender_TitleEntities(t *testing.T) {
	r := New()

	doc, err := r.Render(" Hooks &amp; Filters &#8211; Intro ", "")
	require.NoError(t, err)
	assert.Equal(t, "# Hooks & Filters \u2013 Intro\n\n", doc)
}

func TestBody_BaseConversion(t *testing.T) {
	r := New(DefaultRules()...)

	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{"atx heading", "<h2>Section</h2>", []string{"## Section"}},
		{"emphasis", "<p>an <em>important</em> note</p>", []string{"*important*"}},
		{"strong", "<p><strong>bold</strong></p>", []string{"**bold**"}},
		{"fenced code", "<pre><code>x := 1</code></pre>", []string{"```", "x := 1"}},
		{
			"table",
			"<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>",
			[]string{"| A", "---", "| 1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Body(tt.html)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestBody_BrushCodeBlock(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<pre class="brush: bash">echo hi</pre>`)
	require.NoError(t, err)
	assert.Equal(t, "```bash\necho hi\n```", got)
}

func TestBody_BrushCodeBlockKeepsRawSource(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<p>Before</p><pre class="brush: php; title: ; notranslate">if ( $a &lt; $b &amp;&amp; $c ) { echo "*x*"; }</pre><p>After</p>`)
	require.NoError(t, err)
	assert.Contains(t, got, "```php\nif ( $a < $b && $c ) { echo \"*x*\"; }\n```")
	assert.Contains(t, got, "Before")
	assert.Contains(t, got, "After")
}

func TestBody_BrushWithoutKnownLanguage(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<pre class="brush: plain">text</pre>`)
	require.NoError(t, err)
	assert.Equal(t, "```\ntext\n```", got)
}

func TestBody_HiddenGlossary(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<p>A <span class="glossary-item-hidden-content">tooltip text</span>hook</p>`)
	require.NoError(t, err)
	assert.NotContains(t, got, "tooltip text")
	assert.Contains(t, got, "hook")
}

func TestBody_GlossaryClassMustMatchExactly(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<p><span class="glossary-item-hidden-content extra">kept</span></p>`)
	require.NoError(t, err)
	assert.Contains(t, got, "kept")
}

func TestBody_KeepsUnmatchedElements(t *testing.T) {
	r := New(DefaultRules()...)

	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{"classed span", `<p><span class="x">word</span></p>`, []string{"word"}},
		{"bare span", `<p>a <span>b</span> c</p>`, []string{"a", "b", "c"}},
		{
			"callout and inline code span",
			`<div class="callout"><p>Always escape output.</p></div><p>Use <span class="code">esc_html()</span> here.</p>`,
			[]string{"Always escape output.", "esc", "html()", "here."},
		},
		{"button", `<p><button type="button">Copy</button></p>`, []string{"Copy"}},
		{"classed list item", `<ul><li class="note">one</li></ul>`, []string{"- one"}},
		{"classed link", `<p><a href="https://example.org/" class="button">docs</a></p>`, []string{"[docs](https://example.org/)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Body(tt.html)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestBody_DropRulesApplyToAnyElement(t *testing.T) {
	r := New(DefaultRules()...)

	tests := []struct {
		name string
		html string
	}{
		{"glossary paragraph", `<p class="glossary-item-hidden-content">secret</p><p>keep</p>`},
		{"glossary list item", `<ul><li class="glossary-item-hidden-content">secret</li></ul><p>keep</p>`},
		{"glossary div", `<div class="glossary-item-hidden-content">secret</div><p>keep</p>`},
		{"toggle div", `<div class="show-complete-source">secret</div><p>keep</p>`},
		{"toggle button", `<p><button class="less-complete-source">secret</button>keep</p>`},
		{"toggle span", `<p><span class="show-complete-source">secret</span>keep</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Body(tt.html)
			require.NoError(t, err)
			assert.NotContains(t, got, "secret")
			assert.Contains(t, got, "keep")
		})
	}
}

func TestBody_BrushCodeBlockUndoesBackslashEscapes(t *testing.T) {
	r := New(DefaultRules()...)

	// The passes run on the block's inner HTML, so source backslashes are
	// treated as markdown escapes too.
	got, err := r.Body(`<pre class="brush: php">preg_match( '/a\\b/', $s ); // x\*y</pre>`)
	require.NoError(t, err)
	assert.Equal(t, "```php\npreg_match( '/a\\b/', $s ); // x*y\n```", got)
}

func TestBody_CodeToggle(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<p>Source <a href="#" class="show-complete-source">Expand full source code</a><a href="#" class="less-complete-source">Collapse</a>end</p>`)
	require.NoError(t, err)
	assert.NotContains(t, got, "Expand")
	assert.NotContains(t, got, "Collapse")
	assert.Contains(t, got, "end")
}

func TestBody_DefinitionTerm(t *testing.T) {
	r := New(DefaultRules()...)

	got, err := r.Body(`<dl><dt>Hook</dt><dd>A place to attach code.</dd></dl>`)
	require.NoError(t, err)
	assert.Contains(t, got, "**Hook**")
	assert.Contains(t, got, "A place to attach code.")
}

func TestBody_WithoutRules(t *testing.T) {
	r := New()

	got, err := r.Body(`<p>A <span class="glossary-item-hidden-content">tooltip</span></p>`)
	require.NoError(t, err)
	assert.Contains(t, got, "tooltip")
}

func TestBody_Deterministic(t *testing.T) {
	r := New(DefaultRules()...)
	in := `<h3>T</h3><pre class="brush: css">a { b: c; }</pre><dl><dt>x</dt></dl>`

	first, err := r.Body(in)
	require.NoError(t, err)
	_, err = r.Body(`<p>something else</p>`)
	require.NoError(t, err)
	second, err := r.Body(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRuleOrder_EarliestWins(t *testing.T) {
	first := Rule{
		Name:    "first",
		Tags:    []string{"span"},
		Replace: func(string, *goquery.Selection) string { return "FIRST" },
	}
	second := Rule{
		Name:    "second",
		Tags:    []string{"span"},
		Replace: func(string, *goquery.Selection) string { return "SECOND" },
	}

	got, err := New(first, second).Body(`<p><span>x</span></p>`)
	require.NoError(t, err)
	assert.Equal(t, "FIRST", got)
}

func selection(t *testing.T, fragment, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	sel := doc.Find(selector).First()
	require.Equal(t, 1, sel.Length())
	return sel
}

func TestRuleMatch(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		fragment string
		selector string
		want     bool
	}{
		{"glossary exact", HiddenGlossary(), `<span class="glossary-item-hidden-content">x</span>`, "span", true},
		{"glossary other class", HiddenGlossary(), `<span class="glossary-item">x</span>`, "span", false},
		{"glossary no class", HiddenGlossary(), `<span>x</span>`, "span", false},
		{"toggle show", CodeToggle(), `<a class="button show-complete-source">x</a>`, "a", true},
		{"toggle less", CodeToggle(), `<a class="less-complete-source">x</a>`, "a", true},
		{"toggle plain link", CodeToggle(), `<a href="/x">x</a>`, "a", false},
		{"glossary on paragraph", HiddenGlossary(), `<p class="glossary-item-hidden-content">x</p>`, "p", true},
		{"toggle on div", CodeToggle(), `<div class="show-complete-source">x</div>`, "div", true},
		{"brush", BrushCodeBlock(), `<pre class="brush: xml; notranslate">x</pre>`, "pre", true},
		{"plain pre", BrushCodeBlock(), `<pre>x</pre>`, "pre", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := selection(t, tt.fragment, tt.selector)
			assert.Equal(t, tt.want, tt.rule.Match(sel))
		})
	}
}

func TestBrushLanguage(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{"brush: css", "css"},
		{"brush: bash; notranslate", "bash"},
		{"brush: php; title: ; notranslate", "php"},
		{"brush: yaml", "yaml"},
		{"brush: xml", "xml"},
		{"brush: jscript", "javascript"},
		{"brush: plain", ""},
		{"brush: php; class-name: css-demo", "css"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			if got := BrushLanguage(tt.class); got != tt.want {
				t.Errorf("BrushLanguage(%q) = %q, want %q", tt.class, got, tt.want)
			}
		})
	}
}

func TestCleanCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "echo hi", "echo hi"},
		{"entities", "&lt;?php echo &quot;a&quot; &amp;&amp; &#39;b&#39;; ?&gt;", `<?php echo "a" && 'b'; ?>`},
		{"double backslash", `C:\\path`, `C:\path`},
		{"markdown escapes", "\\*a\\* \\_b\\_ \\[c\\] \\` \\= \\- \\>", "*a* _b_ [c] ` = - >"},
		{"leading plus only", "\\+ one\n\\+ two \\+", "+ one\n+ two \\+"},
		{"tilde fence", `\~~~`, "~~~"},
		{"leading breaks", "<br/><br/>\n\ncode", "code"},
		{"paragraph wrapper", "<p>code</p>", "code"},
		{"single leading newline", "\n\nx", "\nx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCode(tt.in))
		})
	}
}
