// Package markdown renders the small subset of markdown that quiz
// explanations use: plain paragraphs and fenced code blocks.
package markdown

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/abhisek/knowflow/internal/ui/theme"
)

const fence = "```"

// Segment is one piece of split text.
type Segment struct {
	Code     bool
	Language string
	Text     string
}

// Split cuts text on ``` markers. Odd pieces are code blocks whose first
// line is the language label; even pieces are plain text. Inline markup is
// left alone. An unterminated fence still yields a code block.
func Split(text string) []Segment {
	parts := strings.Split(text, fence)
	out := make([]Segment, 0, len(parts))
	for i, part := range parts {
		if i%2 == 0 {
			if strings.TrimSpace(part) == "" {
				continue
			}
			out = append(out, Segment{Text: strings.Trim(part, "\n")})
			continue
		}
		lang, code, _ := strings.Cut(part, "\n")
		out = append(out, Segment{
			Code:     true,
			Language: strings.TrimSpace(lang),
			Text:     strings.TrimRight(code, "\n"),
		})
	}
	return out
}

var (
	paragraphStyle = lipgloss.NewStyle().Foreground(theme.Text)

	codeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1)

	langStyle = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Bold(true)
)

// Render returns text formatted for the terminal, wrapped to width.
// Code blocks are syntax highlighted.
func Render(text string, width int) string {
	if width < 20 {
		width = 20
	}
	var blocks []string
	for _, seg := range Split(text) {
		if !seg.Code {
			blocks = append(blocks, paragraphStyle.Width(width).Render(seg.Text))
			continue
		}
		body := Highlight(seg.Text, seg.Language)
		if seg.Language != "" {
			body = langStyle.Render(strings.ToUpper(seg.Language)) + "\n" + body
		}
		blocks = append(blocks, codeStyle.MaxWidth(width).Render(body))
	}
	return strings.Join(blocks, "\n\n")
}

// Highlight colours code with chroma. It returns code unchanged when the
// lexer or formatter fails.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, it); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
