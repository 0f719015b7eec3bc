package jsonfield

import (
	"fmt"
	"io"
	"strings"

	"github.com/amterp/color"
)

// SprintfFuncer is an interface wrapper around the `color` package's functionality.
// It defines a method that returns a function suitable for colorizing strings
// using fmt.Sprintf-style formatting, so that *color.Color values and any other
// implementation can be used interchangeably by the TerminalFormatter.
type SprintfFuncer interface {
	// SprintfFunc returns a function that takes a format string and arguments
	// (like fmt.Sprintf) and returns the resulting string wrapped in the
	// appropriate ANSI escape codes.
	SprintfFunc() func(format string, a ...interface{}) string
}

// Default color settings using the `color` package.
// Users can override these by creating their own TerminalFormatter instance.
var (
	// DefaultSpaceColor defines the color for whitespace between tokens. Default is no color.
	DefaultSpaceColor = color.New()
	// DefaultCommaColor defines the color for the comma ',' separating elements. Default is bold.
	DefaultCommaColor = color.New(color.Bold)
	// DefaultColonColor defines the color for the colon (and any whitespace before it) ending a key. Default is bold.
	DefaultColonColor = color.New(color.Bold)
	// DefaultObjectColor defines the color for object delimiters '{' and '}'. Default is bold.
	DefaultObjectColor = color.New(color.Bold)
	// DefaultArrayColor defines the color for array delimiters '[' and ']'. Default is bold.
	DefaultArrayColor = color.New(color.Bold)
	// DefaultKeyQuoteColor defines the color for the quotes around object keys. Default is bold blue.
	DefaultKeyQuoteColor = color.New(color.FgBlue, color.Bold)
	// DefaultKeyColor defines the color for the text of object keys. Default is bold blue.
	DefaultKeyColor = color.New(color.FgBlue, color.Bold)
	// DefaultStringQuoteColor defines the color for the quotes around string values. Default is green.
	DefaultStringQuoteColor = color.New(color.FgGreen)
	// DefaultStringColor defines the color for the text of string values. Default is green.
	DefaultStringColor = color.New(color.FgGreen)
	// DefaultTrueColor defines the color for 'true'. Default is no color.
	DefaultTrueColor = color.New()
	// DefaultFalseColor defines the color for 'false'. Default is no color.
	DefaultFalseColor = color.New()
	// DefaultNumberColor defines the color for numbers. Default is no color.
	DefaultNumberColor = color.New()
	// DefaultNullColor defines the color for 'null'. Default is bold black (often appears gray).
	DefaultNullColor = color.New(color.FgBlack, color.Bold)
)

// TerminalFormatter renders canonical JSON text with ANSI colors, driven by
// the same token stream as the HTML output. A zero value TerminalFormatter{}
// uses all the Default*Color settings; a nil field falls back to its default.
type TerminalFormatter struct {
	SpaceColor       SprintfFuncer
	CommaColor       SprintfFuncer
	ColonColor       SprintfFuncer
	ObjectColor      SprintfFuncer
	ArrayColor       SprintfFuncer
	KeyQuoteColor    SprintfFuncer
	KeyColor         SprintfFuncer
	StringQuoteColor SprintfFuncer
	StringColor      SprintfFuncer
	TrueColor        SprintfFuncer
	FalseColor       SprintfFuncer
	NumberColor      SprintfFuncer
	NullColor        SprintfFuncer
}

// Helper methods to get the appropriate SprintfFuncer, falling back to defaults if nil.
func pick(c, def SprintfFuncer) SprintfFuncer {
	if c != nil {
		return c
	}
	return def
}

func (f *TerminalFormatter) spaceColor() SprintfFuncer  { return pick(f.SpaceColor, DefaultSpaceColor) }
func (f *TerminalFormatter) commaColor() SprintfFuncer  { return pick(f.CommaColor, DefaultCommaColor) }
func (f *TerminalFormatter) colonColor() SprintfFuncer  { return pick(f.ColonColor, DefaultColonColor) }
func (f *TerminalFormatter) objectColor() SprintfFuncer { return pick(f.ObjectColor, DefaultObjectColor) }
func (f *TerminalFormatter) arrayColor() SprintfFuncer  { return pick(f.ArrayColor, DefaultArrayColor) }
func (f *TerminalFormatter) keyQuoteColor() SprintfFuncer {
	return pick(f.KeyQuoteColor, DefaultKeyQuoteColor)
}
func (f *TerminalFormatter) keyColor() SprintfFuncer { return pick(f.KeyColor, DefaultKeyColor) }
func (f *TerminalFormatter) stringQuoteColor() SprintfFuncer {
	return pick(f.StringQuoteColor, DefaultStringQuoteColor)
}
func (f *TerminalFormatter) stringColor() SprintfFuncer { return pick(f.StringColor, DefaultStringColor) }
func (f *TerminalFormatter) trueColor() SprintfFuncer   { return pick(f.TrueColor, DefaultTrueColor) }
func (f *TerminalFormatter) falseColor() SprintfFuncer  { return pick(f.FalseColor, DefaultFalseColor) }
func (f *TerminalFormatter) numberColor() SprintfFuncer { return pick(f.NumberColor, DefaultNumberColor) }
func (f *TerminalFormatter) nullColor() SprintfFuncer   { return pick(f.NullColor, DefaultNullColor) }

// terminalState holds the colorizing functions bound for one Format call.
type terminalState struct {
	dst io.Writer

	// Pre-bound printing functions that include the colorization logic
	// based on the TerminalFormatter settings.
	sprintfSpace       func(format string, a ...interface{}) string
	sprintfComma       func(format string, a ...interface{}) string
	sprintfColon       func(format string, a ...interface{}) string
	sprintfObject      func(format string, a ...interface{}) string
	sprintfArray       func(format string, a ...interface{}) string
	sprintfKeyQuote    func(format string, a ...interface{}) string
	sprintfKey         func(format string, a ...interface{}) string
	sprintfStringQuote func(format string, a ...interface{}) string
	sprintfString      func(format string, a ...interface{}) string
	sprintfTrue        func(format string, a ...interface{}) string
	sprintfFalse       func(format string, a ...interface{}) string
	sprintfNumber      func(format string, a ...interface{}) string
	sprintfNull        func(format string, a ...interface{}) string
}

func newTerminalState(f *TerminalFormatter, dst io.Writer) *terminalState {
	return &terminalState{
		dst:                dst,
		sprintfSpace:       f.spaceColor().SprintfFunc(),
		sprintfComma:       f.commaColor().SprintfFunc(),
		sprintfColon:       f.colonColor().SprintfFunc(),
		sprintfObject:      f.objectColor().SprintfFunc(),
		sprintfArray:       f.arrayColor().SprintfFunc(),
		sprintfKeyQuote:    f.keyQuoteColor().SprintfFunc(),
		sprintfKey:         f.keyColor().SprintfFunc(),
		sprintfStringQuote: f.stringQuoteColor().SprintfFunc(),
		sprintfString:      f.stringColor().SprintfFunc(),
		sprintfTrue:        f.trueColor().SprintfFunc(),
		sprintfFalse:       f.falseColor().SprintfFunc(),
		sprintfNumber:      f.numberColor().SprintfFunc(),
		sprintfNull:        f.nullColor().SprintfFunc(),
	}
}

// Format writes text to dst with every token and structural character
// colorized. Text is expected to be canonical text from Encode.
func (f *TerminalFormatter) Format(dst io.Writer, text string) error {
	ts := newTerminalState(f, dst)
	pos := 0
	for _, tok := range Tokenize(text) {
		if err := ts.printGap(text[pos:tok.Start]); err != nil {
			return err
		}
		if err := ts.printToken(tok); err != nil {
			return err
		}
		pos = tok.End
	}
	return ts.printGap(text[pos:])
}

// Sprint returns Format's output as a string.
func (f *TerminalFormatter) Sprint(text string) string {
	var b strings.Builder
	_ = f.Format(&b, text)
	return b.String()
}

// printGap colorizes the punctuation and whitespace between two tokens.
func (ts *terminalState) printGap(gap string) error {
	var b strings.Builder
	for _, r := range gap {
		switch r {
		case '{', '}':
			b.WriteString(ts.sprintfObject("%c", r))
		case '[', ']':
			b.WriteString(ts.sprintfArray("%c", r))
		case ',':
			b.WriteString(ts.sprintfComma(","))
		case ':':
			b.WriteString(ts.sprintfColon(":"))
		default:
			b.WriteString(ts.sprintfSpace("%c", r))
		}
	}
	_, err := io.WriteString(ts.dst, b.String())
	return err
}

// printToken colorizes a single token. Keys and strings color their quotes
// separately from their content, the way jsoncolor prints fields.
func (ts *terminalState) printToken(tok Token) error {
	var out string
	switch tok.Kind {
	case KeyToken:
		// The key token carries its trailing whitespace and colon.
		end := strings.LastIndexByte(tok.Text, '"')
		out = ts.sprintfKeyQuote(`"`) +
			ts.sprintfKey("%s", tok.Text[1:end]) +
			ts.sprintfKeyQuote(`"`) +
			ts.sprintfColon("%s", tok.Text[end+1:])
	case StringToken:
		out = ts.sprintfStringQuote(`"`) +
			ts.sprintfString("%s", tok.Text[1:len(tok.Text)-1]) +
			ts.sprintfStringQuote(`"`)
	case BooleanToken:
		if tok.Text == "true" {
			out = ts.sprintfTrue("%s", tok.Text)
		} else {
			out = ts.sprintfFalse("%s", tok.Text)
		}
	case NumberToken:
		out = ts.sprintfNumber("%s", tok.Text)
	case NullToken:
		out = ts.sprintfNull("null")
	default:
		return fmt.Errorf("jsonfield: unknown token kind %v", tok.Kind)
	}
	_, err := io.WriteString(ts.dst, out)
	return err
}

// DefaultTerminalFormatter is used by Colorize.
var DefaultTerminalFormatter = &TerminalFormatter{}

// Colorize canonicalizes v and returns it with ANSI colors applied by
// DefaultTerminalFormatter. Colors are omitted when the `color` package
// has them disabled (color.NoColor).
func Colorize(v any) string {
	return DefaultTerminalFormatter.Sprint(Encode(v))
}
