// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders assistant replies for the terminal.
//
// Prose goes through glamour with the chat style. Top-level code blocks are
// cut out of the document with goldmark and rendered separately with chroma
// so their lines stay verbatim and are never word-wrapped. Inline code spans
// are masked before glamour wraps the paragraph and put back afterwards.
package markdown

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jeranaias/ayane-chat/internal/ui/styles"
)

// Options configures a Renderer.
type Options struct {
	// Width is the wrap width for prose. Zero disables wrapping. Code is
	// never wrapped or cut.
	Width int

	// CodeTheme is a chroma style name.
	CodeTheme string

	Profile termenv.Profile
	Dark    bool
}

// DefaultOptions returns options for the current terminal.
func DefaultOptions(width int, codeTheme string) Options {
	return Options{
		Width:     width,
		CodeTheme: codeTheme,
		Profile:   termenv.ColorProfile(),
		Dark:      termenv.HasDarkBackground(),
	}
}

// Renderer maps Markdown to styled terminal text. Output depends only on
// the input and the options.
type Renderer struct {
	opts  Options
	mu    sync.Mutex
	prose *glamour.TermRenderer
	md    goldmark.Markdown

	inline lipgloss.Style
	label  lipgloss.Style
}

// New builds a renderer.
func New(opts Options) (*Renderer, error) {
	if opts.CodeTheme == "" {
		opts.CodeTheme = "monokai"
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(StyleConfig(opts.Dark, opts.CodeTheme)),
		glamour.WithWordWrap(opts.Width),
		glamour.WithPreservedNewLines(),
		glamour.WithColorProfile(opts.Profile),
	)
	if err != nil {
		return nil, err
	}

	lg := lipgloss.NewRenderer(io.Discard)
	lg.SetColorProfile(opts.Profile)
	lg.SetHasDarkBackground(opts.Dark)

	return &Renderer{
		opts:   opts,
		prose:  tr,
		md:     goldmark.New(),
		inline: lg.NewStyle().Foreground(styles.Purple).Background(styles.CodeBg),
		label:  lg.NewStyle().Foreground(styles.TextMuted).Italic(true),
	}, nil
}

// Render returns src as styled text. If rendering fails the raw text is
// returned unchanged.
func (r *Renderer) Render(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var parts []string
	for _, seg := range r.split([]byte(src)) {
		var out string
		if seg.code {
			out = r.renderCode(seg.lang, seg.text)
		} else {
			rendered, err := r.prose.Render(seg.text)
			if err != nil {
				log.Debug("markdown render failed", "err", err)
				return src
			}
			out = trimBlankLines(r.unmask(rendered, seg.spans))
		}
		if out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n\n")
}

// =============================================================================
// SEGMENTS
// =============================================================================

type segment struct {
	code bool
	lang string
	text string

	// spans holds the inline code masked out of a prose segment, in order.
	spans []string
}

// split cuts the top-level code blocks out of src. Prose between them is
// kept as Markdown source with its inline code masked.
func (r *Renderer) split(src []byte) []segment {
	doc := r.md.Parser().Parse(text.NewReader(src))
	spans := codeSpans(doc, src)

	var segs []segment
	pos := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var lang string
		var start, end int
		var ok bool

		switch block := n.(type) {
		case *ast.FencedCodeBlock:
			lang = string(block.Language(src))
			start, end, ok = fencedRange(block, src)
		case *ast.CodeBlock:
			start, end, ok = indentedRange(block, src)
		default:
			continue
		}
		if !ok || start < pos {
			continue
		}

		if strings.TrimSpace(string(src[pos:start])) != "" {
			segs = append(segs, maskSpans(src, pos, start, spans))
		}
		segs = append(segs, segment{code: true, lang: lang, text: blockText(n, src)})
		pos = end
	}

	if strings.TrimSpace(string(src[pos:])) != "" {
		segs = append(segs, maskSpans(src, pos, len(src), spans))
	}
	return segs
}

// blockText joins the raw lines of a code block, padding included.
func blockText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.WriteString(strings.Repeat(" ", seg.Padding))
		b.Write(seg.Value(src))
	}
	// Only the newline ending the last line is dropped; blank lines stay.
	return strings.TrimSuffix(b.String(), "\n")
}

// fencedRange returns the byte range of a fenced block, fences included.
func fencedRange(block *ast.FencedCodeBlock, src []byte) (int, int, bool) {
	var anchor int
	switch {
	case block.Info != nil:
		anchor = block.Info.Segment.Start
	case block.Lines().Len() > 0:
		// First content line sits right after the opening fence line.
		anchor = lineStart(src, block.Lines().At(0).Start) - 1
		if anchor < 0 {
			return 0, 0, false
		}
	default:
		return 0, 0, false
	}
	start := lineStart(src, anchor)

	end := lineEnd(src, anchor)
	if lines := block.Lines(); lines.Len() > 0 {
		end = lineEnd(src, lines.At(lines.Len()-1).Start)
	}

	// Closing fence, when present.
	if end < len(src) {
		next := lineEnd(src, end)
		fence := strings.TrimSpace(string(src[end:next]))
		if strings.HasPrefix(fence, "```") || strings.HasPrefix(fence, "~~~") {
			end = next
		}
	}
	return start, end, true
}

func indentedRange(block *ast.CodeBlock, src []byte) (int, int, bool) {
	lines := block.Lines()
	if lines.Len() == 0 {
		return 0, 0, false
	}
	return lineStart(src, lines.At(0).Start), lineEnd(src, lines.At(lines.Len()-1).Start), true
}

// lineStart returns the offset of the first byte of the line holding i.
func lineStart(src []byte, i int) int {
	if i > len(src) {
		i = len(src)
	}
	return bytes.LastIndexByte(src[:i], '\n') + 1
}

// lineEnd returns the offset just past the newline ending the line holding i.
func lineEnd(src []byte, i int) int {
	if i >= len(src) {
		return len(src)
	}
	if j := bytes.IndexByte(src[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(src)
}

// =============================================================================
// INLINE CODE
// =============================================================================

// maskBase is the first rune of the private use area. Mask runes are one
// column wide and contain no break opportunity, so the wrapper moves a
// masked span as a single word.
const maskBase = 0xE000

const maskRunes = 0x1900

type codeSpan struct {
	start, end int
	content    string
}

// codeSpans returns every inline code span in the document with the byte
// range of its source, backticks included.
func codeSpans(doc ast.Node, src []byte) []codeSpan {
	var spans []codeSpan
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		cs, ok := n.(*ast.CodeSpan)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		first, ok1 := cs.FirstChild().(*ast.Text)
		last, ok2 := cs.LastChild().(*ast.Text)
		if !ok1 || !ok2 {
			return ast.WalkSkipChildren, nil
		}

		var b strings.Builder
		for c := cs.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(src))
			}
		}
		content := strings.ReplaceAll(b.String(), "\n", " ")

		// Closing run: one stripped space, then the backticks.
		end := last.Segment.Stop
		if end < len(src) && src[end] != '`' {
			end++
		}
		ticks := 0
		for end < len(src) && src[end] == '`' {
			end++
			ticks++
		}

		// Opening run has the same length as the closing one.
		start := first.Segment.Start
		if start > 0 && src[start-1] != '`' {
			start--
		}
		start -= ticks
		if ticks == 0 || start < 0 || string(src[start:start+ticks]) != strings.Repeat("`", ticks) {
			return ast.WalkSkipChildren, nil
		}

		spans = append(spans, codeSpan{start: start, end: end, content: content})
		return ast.WalkSkipChildren, nil
	})
	return spans
}

// maskSpans returns src[from:to] as a prose segment with each code span in
// range replaced by a run of one mask rune as wide as its content.
func maskSpans(src []byte, from, to int, spans []codeSpan) segment {
	var b strings.Builder
	var masked []string
	pos := from
	for _, sp := range spans {
		if sp.start < pos || sp.end > to {
			continue
		}
		b.Write(src[pos:sp.start])
		b.WriteString(maskFor(len(masked), sp.content))
		masked = append(masked, sp.content)
		pos = sp.end
	}
	b.Write(src[pos:to])
	return segment{text: b.String(), spans: masked}
}

func maskFor(i int, content string) string {
	w := runewidth.StringWidth(content)
	if w < 1 {
		w = 1
	}
	return strings.Repeat(string(rune(maskBase+i%maskRunes)), w)
}

// unmask puts the styled code spans back in place of their masks.
func (r *Renderer) unmask(out string, spans []string) string {
	for i, content := range spans {
		out = strings.Replace(out, maskFor(i, content), r.inline.Render(content), 1)
	}
	return out
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

// renderCode highlights code with chroma. Lines are indented by two spaces
// and kept whole; the transcript clips them for display.
func (r *Renderer) renderCode(lang, code string) string {
	label := lang
	if label == "" {
		label = "code"
	}

	lines := strings.Split(r.highlight(lang, code), "\n")
	out := make([]string, 0, len(lines)+1)
	out = append(out, "  "+r.label.Render(label))
	for _, line := range lines {
		out = append(out, "  "+line)
	}
	return strings.Join(out, "\n")
}

func (r *Renderer) highlight(lang, code string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(r.opts.CodeTheme)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatterFor(r.opts.Profile)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	// Chroma ends the last token with a newline the source did not have.
	out := buf.String()
	if !strings.HasSuffix(code, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

func formatterFor(profile termenv.Profile) chroma.Formatter {
	switch profile {
	case termenv.Ascii:
		return formatters.NoOp
	case termenv.TrueColor:
		return formatters.TTY16m
	default:
		return formatters.TTY256
	}
}

// trimBlankLines drops leading and trailing lines that are empty once
// escape codes and spaces are removed.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	first, last := 0, len(lines)-1
	for first <= last && strings.TrimSpace(xansi.Strip(lines[first])) == "" {
		first++
	}
	for last >= first && strings.TrimSpace(xansi.Strip(lines[last])) == "" {
		last--
	}
	if first > last {
		return ""
	}
	for i := first; i <= last; i++ {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines[first:last+1], "\n")
}
