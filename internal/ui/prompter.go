package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user presses Ctrl-C in a prompt.
var ErrInterrupted = errors.New("interrupted")

type lineResult struct {
	line string
	err  error
}

// Prompter reads user input and permission answers. Reads from the input
// stream happen only on request, so an interactive confirm prompt can take
// over the terminal between them.
type Prompter struct {
	term      *Terminal
	spinner   *Spinner
	interrupt func()

	mu       sync.Mutex // one prompt at a time
	reader   *bufio.Reader
	requests chan struct{}
	results  chan lineResult
	once     sync.Once
}

// NewPrompter creates a Prompter. interrupt is called when the user presses
// Ctrl-C inside an interactive prompt and may be nil.
func NewPrompter(term *Terminal, spinner *Spinner, interrupt func()) *Prompter {
	if term == nil {
		panic("term is required")
	}
	if spinner == nil {
		panic("spinner is required")
	}
	if interrupt == nil {
		interrupt = func() {}
	}
	return &Prompter{
		term:      term,
		spinner:   spinner,
		interrupt: interrupt,
		reader:    bufio.NewReader(term.in),
		requests:  make(chan struct{}),
		results:   make(chan lineResult, 1),
	}
}

// ReadInput shows prompt and reads one line. It returns io.EOF when input
// ends and the context error when cancelled.
func (p *Prompter) ReadInput(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.spinner.Stop()
	p.term.Write(p.term.Styles().Prompt.Render(prompt))
	return p.readLine(ctx)
}

// ReadPermission asks whether operation may run. On an interactive terminal
// it shows a y/n confirm; otherwise it reads an answer line.
func (p *Prompter) ReadPermission(ctx context.Context, operation string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.spinner.Stop()
	question := fmt.Sprintf("? Allow %s?", operation)
	if p.term.Interactive() {
		return p.confirm(ctx, question)
	}

	p.term.Write(p.term.Styles().Notice.Render(question) + " (y/n) ")
	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	return parseAnswer(line), nil
}

func parseAnswer(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() { go p.readLoop() })

	select {
	case p.requests <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-p.results:
		if res.err != nil {
			if errors.Is(res.err, io.EOF) && res.line != "" {
				return strings.TrimRight(res.line, "\r\n"), nil
			}
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Prompter) readLoop() {
	for range p.requests {
		line, err := p.reader.ReadString('\n')
		p.results <- lineResult{line: line, err: err}
	}
}

func (p *Prompter) confirm(ctx context.Context, question string) (bool, error) {
	m := confirmModel{question: question, styles: p.term.Styles()}
	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.term.in),
		tea.WithOutput(p.term.out),
	)

	p.term.mu.Lock()
	final, err := program.Run()
	p.term.mu.Unlock()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}

	result := final.(confirmModel)
	if result.interrupted {
		p.interrupt()
		return false, ErrInterrupted
	}
	return result.allowed, nil
}

// confirmModel is a one-key yes/no prompt.
type confirmModel struct {
	question    string
	styles      Styles
	decided     bool
	allowed     bool
	interrupted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.decided, m.allowed = true, true
		return m, tea.Quit
	case "n", "N", "esc":
		m.decided = true
		return m, tea.Quit
	case "ctrl+c":
		m.interrupted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	question := m.styles.Notice.Render(m.question)
	switch {
	case m.interrupted:
		return question + " cancelled\n"
	case m.decided && m.allowed:
		return question + " yes\n"
	case m.decided:
		return question + " no\n"
	default:
		return question + " (y/n) "
	}
}
