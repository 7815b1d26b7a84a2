package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	previewBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
	previewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	previewLabelStyle = lipgloss.NewStyle().Faint(true)
	promptStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

// Console asks for approval on the terminal. The answer is read on a
// dedicated goroutine so a canceled context aborts the wait.
type Console struct {
	in  io.Reader
	out io.Writer
}

// NewConsole builds a Console on stdin/stdout.
func NewConsole() *Console {
	return &Console{in: os.Stdin, out: os.Stdout}
}

// NewConsoleWith builds a Console on the provided streams (used in tests).
func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// Confirm renders the post preview and waits for a yes/no answer. Anything
// other than an explicit yes aborts.
func (c *Console) Confirm(ctx context.Context, req Request) (Decision, error) {
	fmt.Fprintln(c.out, c.renderPreview(req))
	fmt.Fprintln(c.out, c.styled(promptStyle, "Review the post in the browser. Publish it yourself if it looks right."))
	fmt.Fprint(c.out, "Did you publish this post? [y/N]: ")

	answer, err := c.readLine(ctx)
	if err != nil {
		return Aborted, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return Approved, nil
	default:
		return Aborted, nil
	}
}

// PromptLogin waits for the operator to finish logging in inside the opened
// browser window. Satisfies session.LoginPrompter.
func (c *Console) PromptLogin(ctx context.Context, entryURL string) error {
	fmt.Fprintln(c.out, c.styled(promptStyle, "Log in at "+entryURL+" in the opened browser."))
	fmt.Fprint(c.out, "Press ENTER when you are logged in: ")
	_, err := c.readLine(ctx)
	return err
}

func (c *Console) renderPreview(req Request) string {
	var body strings.Builder
	body.WriteString(c.styled(previewTitleStyle, req.ProductTitle))
	body.WriteString("\n\n")
	body.WriteString(req.Caption)
	if req.VideoPath != "" {
		body.WriteString("\n\n")
		body.WriteString(c.styled(previewLabelStyle, "video: "+req.VideoPath))
	}
	if req.ProductURL != "" {
		body.WriteString("\n")
		body.WriteString(c.styled(previewLabelStyle, "product: "+req.ProductURL))
	}
	if !c.isTerminal() {
		return body.String()
	}
	return previewBoxStyle.Render(body.String())
}

func (c *Console) styled(style lipgloss.Style, text string) string {
	if !c.isTerminal() {
		return text
	}
	return style.Render(text)
}

func (c *Console) isTerminal() bool {
	f, ok := c.out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		reader := bufio.NewReader(c.in)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			ch <- result{err: err}
			return
		}
		ch <- result{line: line}
	}()

	select {
	case res := <-ch:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
