package goldmark_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/parleychat/parley"
	"github.com/parleychat/parley/goldmark"
	"github.com/stretchr/testify/assert"
)

func stripANSI(s string) string {
	// Matches SGR, cursor movement, and other CSI sequences.
	re := regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	return re.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI color output so styled elements (headings, links) produce
	// visible escape codes that we can assert against.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := parley.DefaultTheme()

	t.Run("empty input returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", goldmark.Render("", 80, theme))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("hello world", 80, theme)
		assert.Contains(t, stripANSI(result), "hello world")
	})

	t.Run("zero width falls back to default", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("hello world", 0, theme)
		assert.Contains(t, stripANSI(result), "hello world")
	})

	t.Run("heading renders content with distinct styling", func(t *testing.T) {
		t.Parallel()
		heading := goldmark.Render("# Title", 80, theme)
		paragraph := goldmark.Render("Title", 80, theme)
		assert.Contains(t, stripANSI(heading), "Title")
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("bold text", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("**bold**", 80, theme)
		assert.Contains(t, stripANSI(result), "bold")
		assert.Contains(t, result, "\x1b[1m")
	})

	t.Run("italic text", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("*italic*", 80, theme)
		assert.Contains(t, stripANSI(result), "italic")
	})

	t.Run("inline code", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("`code`", 80, theme)
		assert.Contains(t, stripANSI(result), "code")
	})

	t.Run("fenced code block preserves content without reflow", func(t *testing.T) {
		t.Parallel()
		src := "```go\nfmt.Println(\"hello world\")\n```"
		result := goldmark.Render(src, 20, theme)
		assert.Contains(t, stripANSI(result), `fmt.Println("hello world")`)
	})

	t.Run("code block lines carry the code background", func(t *testing.T) {
		t.Parallel()
		src := "```go\nx := 1\n```"
		result := goldmark.Render(src, 80, theme)
		assert.Contains(t, stripANSI(result), "x := 1")
		// DefaultTheme maps CodeBg to ANSI color 0, background sequence 40.
		assert.Contains(t, result, "\x1b[40m")
	})

	t.Run("fenced code block shows language label", func(t *testing.T) {
		t.Parallel()
		src := "```python\nprint('hi')\n```"
		result := goldmark.Render(src, 80, theme)
		assert.Contains(t, stripANSI(result), "python")
		assert.Contains(t, stripANSI(result), "print('hi')")
	})

	t.Run("bullet list", func(t *testing.T) {
		t.Parallel()
		src := "- one\n- two\n- three"
		result := stripANSI(goldmark.Render(src, 80, theme))
		assert.Contains(t, result, "- one")
		assert.Contains(t, result, "- two")
		assert.Contains(t, result, "- three")
	})

	t.Run("ordered list", func(t *testing.T) {
		t.Parallel()
		src := "1. first\n2. second"
		result := stripANSI(goldmark.Render(src, 80, theme))
		assert.Contains(t, result, "1. first")
		assert.Contains(t, result, "2. second")
	})

	t.Run("nested list", func(t *testing.T) {
		t.Parallel()
		src := "- outer\n  - inner"
		result := stripANSI(goldmark.Render(src, 80, theme))
		assert.Contains(t, result, "- outer")
		assert.Contains(t, result, "  - inner")
	})

	t.Run("blockquote gets a gutter", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("> quoted text", 80, theme))
		assert.Contains(t, result, "┃ ")
		assert.Contains(t, result, "quoted text")
	})

	t.Run("link shows text and destination", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("[docs](https://example.com)", 80, theme))
		assert.Contains(t, result, "docs")
		assert.Contains(t, result, "https://example.com")
	})

	t.Run("thematic break", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("above\n\n---\n\nbelow", 80, theme))
		assert.Contains(t, result, "---")
	})

	t.Run("long paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		src := strings.Repeat("word ", 30)
		result := stripANSI(goldmark.Render(src, 20, theme))
		for _, line := range strings.Split(result, "\n") {
			assert.LessOrEqual(t, len(line), 20)
		}
	})

	t.Run("no trailing newline", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("paragraph", 80, theme)
		assert.False(t, strings.HasSuffix(result, "\n"))
	})
}
