package jsonfield

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/safehtml"
	"github.com/google/safehtml/uncheckedconversions"
)

// DefaultClassPrefix is the class prefix used by a zero HTMLFormatter.
// Token spans get "<prefix>-<kind>", the wrapping <pre> gets
// "<prefix>-output" and wrapped lines "<prefix>-output-line".
const DefaultClassPrefix = "json-field"

// DefaultTabSize is the display width of a tab used for line alignment
// when HTMLFormatter.TabSize is not set.
const DefaultTabSize = 2

// HTMLFormatter renders canonical JSON text as highlighted HTML.
// A zero value HTMLFormatter{} uses DefaultClassPrefix and no line wrapping.
type HTMLFormatter struct {
	// ClassPrefix replaces DefaultClassPrefix when non-empty.
	ClassPrefix string
	// Classes are extra classes added to the <pre> element by Pre.
	Classes []string
	// WrapLines wraps every line of Pre output in a <div> whose negative
	// text-indent and matching padding keep wrapped continuation lines
	// aligned under their own indentation.
	WrapLines bool
	// TabSize is the width, in ch, of one leading tab for WrapLines.
	TabSize int
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&#34;",
	`'`, "&#39;",
)

// escapeText escapes the five HTML-significant characters and leaves
// every other character, controls and noncharacters included, as it is.
func escapeText(s string) safehtml.HTML {
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(htmlEscaper.Replace(s))
}

var closeSpan = uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract("</span>")

func (f *HTMLFormatter) classPrefix() string {
	if f.ClassPrefix != "" {
		return f.ClassPrefix
	}
	return DefaultClassPrefix
}

func (f *HTMLFormatter) tabSize() int {
	if f.TabSize > 0 {
		return f.TabSize
	}
	return DefaultTabSize
}

// Highlight wraps every token of text in a <span> classed by its kind,
// HTML-escaping the token text. Text between tokens is copied unchanged.
func (f *HTMLFormatter) Highlight(text string) string {
	return f.highlight(text).String()
}

// Format writes Highlight(text) to dst.
func (f *HTMLFormatter) Format(dst io.Writer, text string) error {
	_, err := io.WriteString(dst, f.Highlight(text))
	return err
}

// Pre returns the highlighted text inside a classed <pre> element.
func (f *HTMLFormatter) Pre(text string) string {
	classes := append([]string{f.classPrefix() + "-output"}, f.Classes...)
	open := uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(
		`<pre class="` + escapeText(strings.TrimSpace(strings.Join(classes, " "))).String() + `">`)

	body := f.highlight(text)
	if f.WrapLines {
		body = f.wrapLines(body)
	}
	return safehtml.HTMLConcat(open, body,
		uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract("</pre>")).String()
}

func (f *HTMLFormatter) highlight(text string) safehtml.HTML {
	tokens := Tokenize(text)
	parts := make([]safehtml.HTML, 0, 2*len(tokens)+1)
	spanClass := escapeText(f.classPrefix()).String()

	pos := 0
	for _, tok := range tokens {
		// Punctuation and whitespace come from the encoder's own output.
		parts = append(parts, uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(text[pos:tok.Start]))
		open := uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(
			`<span class="` + spanClass + "-" + tok.Kind.String() + `">`)
		parts = append(parts, safehtml.HTMLConcat(open, escapeText(tok.Text), closeSpan))
		pos = tok.End
	}
	parts = append(parts, uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(text[pos:]))
	return safehtml.HTMLConcat(parts...)
}

// wrapLines puts each line of body in its own aligned <div>.
func (f *HTMLFormatter) wrapLines(body safehtml.HTML) safehtml.HTML {
	lineClass := escapeText(f.classPrefix() + "-output-line").String()
	var b strings.Builder
	for _, line := range strings.Split(body.String(), "\n") {
		n := indentWidth(line, f.tabSize())
		fmt.Fprintf(&b, `<div class="%s" style="text-indent:-%dch;padding-left:%dch">%s</div>`,
			lineClass, n, n, line)
	}
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(b.String())
}

// indentWidth measures a line's leading whitespace in ch, counting a tab
// as tabSize and any other whitespace character as one.
func indentWidth(line string, tabSize int) int {
	n := 0
	for _, r := range line {
		switch r {
		case '\t':
			n += tabSize
		case ' ', '\v', '\f', '\r':
			n++
		default:
			return n
		}
	}
	return n
}

// DefaultHTMLFormatter is used by the package-level Highlight and RenderHTML.
var DefaultHTMLFormatter = &HTMLFormatter{}

// Highlight renders canonical text as HTML using DefaultHTMLFormatter.
func Highlight(text string) string {
	return DefaultHTMLFormatter.Highlight(text)
}

// RenderHTML canonicalizes v and returns it highlighted inside a <pre>
// element, with any extra classes appended to the element's class list.
func RenderHTML(v any, classes ...string) string {
	f := *DefaultHTMLFormatter
	f.Classes = append(append([]string(nil), f.Classes...), classes...)
	return f.Pre(Encode(v))
}
