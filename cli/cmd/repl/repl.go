package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/packscript/compiler"
	"github.com/ardnew/packscript/lang"
	"github.com/ardnew/packscript/log"
)

// editDoneMsg is sent when an edited script executed successfully.
type editDoneMsg struct{ out []string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	scriptPrompt = "➜ "
	blockPrompt  = "… "
	ctrlPrompt   = " :"
	indent       = "    "
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help           Print this cruft
  functions      List defined functions
  show NAME      Print the lines of function NAME
  tags           List function tags
  resources      List created resources
  vars           List variables
  edit           Write a script in external $EDITOR
  clear          Clear screen
  quit           Exit REPL

Usage:
  Type a script line to run it; command lines print what they emit
  A line ending with ':' opens a block; an empty line runs it
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between script and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode is the interpretation of submitted input.
type inputMode int

const (
	modeScript inputMode = iota
	modeCtrl
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *compiler.Session
	history      *History
	historyIdx   int
	pending      []string      // lines of the open block
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	altNav       bool // navigating command history with Alt
	altMode      inputMode
	altText      string
	altCursor    int
	width        int
	quitting     bool
	mode         inputMode
	scriptText   string
	scriptCursor int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL on session. History is kept in cacheDir.
func Run(ctx context.Context, session *compiler.Session, cacheDir string) error {
	log.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.String("namespace", session.Namespace()),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		log.WarnContext(ctx, "could not load history", slog.String("error", err.Error()))
	}

	log.TraceContext(ctx, "repl history loaded", slog.Int("entry_count", history.Len()))

	_, err := tea.NewProgram(newModel(ctx, session, history), tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, session *compiler.Session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(scriptPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeScript,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(scriptPrompt) - 2

		return m, nil

	case editDoneMsg:
		return m, printLines(msg.out)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case call.inCall && m.mode == modeScript:
		if signature, params := getSignature(call.name); signature != "" {
			b.WriteString(renderSignatureHint(signature, params, call.argIndex))
		} else {
			b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render(m.emptyHint()))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) emptyHint() string {
	switch {
	case m.mode == modeCtrl:
		return "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
	case len(m.pending) > 0:
		return fmt.Sprintf("Block of %d lines, enter an empty line to run it", len(m.pending))
	default:
		return "Type a script line or press Esc for commands"
	}
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	log.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && len(m.pending) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		m.pending = nil
		m.input.Prompt = m.prompt()
		m.input.SetValue("")
		m.tabActive = false
		m.altNav = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyPrev(), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyNext(), nil

	case tea.KeyShiftUp:
		m, _ = m.historySeek(-1, m.mode, false)

		return m, nil

	case tea.KeyShiftDown:
		var found bool
		if m, found = m.historySeek(1, m.mode, false); !found {
			m = m.historyReset()
		}

		return m, nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNav = false

		return m.toggleMode(), nil

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.altNav = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, completing immediately when only
// one candidate matches.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with replacement
// and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the matches for the current input. When
// autoConfirm is set and the typed word equals the sole candidate, the
// completion is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) prompt() string {
	switch {
	case m.mode == modeCtrl:
		return ctrlPromptStyle.Render(ctrlPrompt)
	case len(m.pending) > 0:
		return promptStyle.Render(blockPrompt)
	default:
		return promptStyle.Render(scriptPrompt)
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	if m.mode == modeCtrl {
		input := strings.TrimSpace(m.input.Value())
		if input == "" {
			return m, nil
		}

		m.ctrlText, m.ctrlCursor = "", 0
		m.input.SetValue("")

		_, _ = m.history.WriteWithMode(input, modeCtrl)
		m.historyIdx = m.history.Len()

		log.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	line := strings.TrimRight(m.input.Value(), " \t")
	echo := tea.Println(m.input.Prompt + inputStyle.Render(line))

	m.scriptText, m.scriptCursor = "", 0
	m.input.SetValue("")

	if strings.TrimSpace(line) != "" {
		_, _ = m.history.WriteWithMode(strings.TrimSpace(line), modeScript)
		m.historyIdx = m.history.Len()
	}

	var text string

	switch {
	case len(m.pending) > 0 && strings.TrimSpace(line) == "":
		text = strings.Join(m.pending, "\n")
		m.pending = nil

	case strings.HasSuffix(line, ":") || len(m.pending) > 0:
		m.pending = append(m.pending, line)
		m.input.Prompt = m.prompt()
		m.input.SetValue(nextIndent(line))
		m.input.CursorEnd()

		return m, echo

	case strings.TrimSpace(line) == "":
		return m, nil

	default:
		text = line
	}

	m.input.Prompt = m.prompt()

	log.TraceContext(m.ctxFunc(), "repl exec", slog.Int("length", len(text)))

	out, err := execute(m.ctxFunc(), m.session, text)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, printLines(out))
}

// nextIndent returns the indentation expected on the line after line.
func nextIndent(line string) string {
	lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	if strings.HasSuffix(line, ":") {
		lead += indent
	}

	return lead
}

// execute runs text in s and returns the lines to display: the emitted lines
// followed by a note for each function the text defined.
func execute(ctx context.Context, s *compiler.Session, text string) ([]string, error) {
	before := len(s.Functions())

	emitted, err := s.Exec(ctx, text+"\n")
	if err != nil {
		return nil, err
	}

	out := emitted

	for _, f := range s.Functions()[before:] {
		out = append(out, fmt.Sprintf("+ %s (%d lines)", f.Name, len(f.Lines)))
	}

	return out, nil
}

func printLines(lines []string) tea.Cmd {
	if len(lines) == 0 {
		return nil
	}

	return tea.Println(resultStyle.Render(strings.Join(lines, "\n")))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))
	cmd, args := parts[0], parts[1:]

	log.TraceContext(m.ctxFunc(), "repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "f", "functions":
		return m, tea.Sequence(echo, tea.Println(listFunctions(m.session)))

	case "s", "show":
		if len(args) != 1 {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("usage: show NAME")))
		}

		text, err := showFunction(m.session, args[0])
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(text)))

	case "t", "tags":
		return m, tea.Sequence(echo, tea.Println(listTags(m.session)))

	case "r", "resources":
		return m, tea.Sequence(echo, tea.Println(listResources(m.session)))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(listVars(m.session)))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m.handleEdit(echo)

	default:
		return m, tea.Println(errorStyle.Render("Unknown command: " + cmd + " (try 'help')"))
	}
}

// handleEdit opens the editor on the open block, if any.
func (m model) handleEdit(echo tea.Cmd) (model, tea.Cmd) {
	cmd := &editScriptCommand{
		session: m.session,
		ctxFunc: m.ctxFunc,
		content: strings.Join(m.pending, "\n"),
	}

	m.pending = nil

	return m, tea.Sequence(echo, tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.ran:
			return editCancelledMsg{}
		}

		return editDoneMsg{out: cmd.emitted}
	}))
}

func listFunctions(s *compiler.Session) string {
	var b strings.Builder

	for _, f := range s.Functions() {
		fmt.Fprintf(&b, "  %s %s\n", f.Name, hintStyle.Render(fmt.Sprintf("(%d lines)", len(f.Lines))))
	}

	return b.String()
}

func showFunction(s *compiler.Session, name string) (string, error) {
	lines, ok := s.Lookup(name)
	if !ok {
		return "", ErrUnknownFunction.With(slog.String("function", name))
	}

	return strings.Join(lines, "\n"), nil
}

func listTags(s *compiler.Session) string {
	var b strings.Builder

	tags := s.Tags()
	for _, tag := range tags.Tags() {
		fmt.Fprintf(&b, "  #%s %s\n", tag, hintStyle.Render(strings.Join(tags.Values(tag), ", ")))
	}

	return b.String()
}

func listResources(s *compiler.Session) string {
	var b strings.Builder

	for _, r := range s.Resources() {
		fmt.Fprintf(&b, "  %s %s\n", r.Name, hintStyle.Render(r.Type))
	}

	return b.String()
}

// listVars lists every variable that is not a builtin function.
func listVars(s *compiler.Session) string {
	var b strings.Builder

	for _, name := range s.Names() {
		v, _ := s.Get(name)
		if t := reflect.TypeOf(v); t != nil && t.Kind() == reflect.Func {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(lang.Format(v))))
	}

	return b.String()
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 40 {
		return s[:37] + "..."
	}

	return s
}

func (m model) historyPrev() model {
	m, _ = m.historySeek(-1, 0, true)

	return m
}

func (m model) historyNext() model {
	m, found := m.historySeek(1, 0, true)
	if !found {
		m = m.historyReset()
	}

	return m
}

// historyCtrl navigates the command history only, switching to command mode
// and restoring the original input at either end.
func (m model) historyCtrl(step int) model {
	if !m.altNav {
		m.altNav = true
		m.altMode = m.mode
		m.altText = m.input.Value()
		m.altCursor = m.input.Position()

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	m, found := m.historySeek(step, modeCtrl, false)
	if found {
		return m
	}

	m.altNav = false
	if m.altMode != m.mode {
		m = m.switchToMode(m.altMode)
	}

	m.input.SetValue(m.altText)
	m.input.SetCursor(m.altCursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// historySeek moves to the nearest entry in direction step that was entered
// in mode, or to the adjacent entry of any mode when anyMode is set.
func (m model) historySeek(step int, mode inputMode, anyMode bool) (model, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil || (!anyMode && entry.Mode != mode) {
			continue
		}

		if m.mode != entry.Mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m, true
	}

	return m, false
}

// historyReset leaves history navigation with an empty input.
func (m model) historyReset() model {
	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

func (m model) toggleMode() model {
	if m.mode == modeScript {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeScript)
}

// switchToMode switches to mode, saving and restoring the input of each.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeScript {
		m.scriptText, m.scriptCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	m.input.Prompt = m.prompt()

	if mode == modeScript {
		m.input.SetValue(m.scriptText)
		m.input.SetCursor(m.scriptCursor)
	} else {
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
