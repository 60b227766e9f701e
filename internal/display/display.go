// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] renders the chat transcript. Settled entries are printed into
// the scrollback above the rendered area; the reply still being typed or
// revealed lives in the redrawn area together with the status bar and
// the input prompt.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
	"github.com/hammamikhairi/smarthub/internal/transcript"
)

const (
	appName     = "SmartHub"
	promptText  = "you> "
	cursorGlyph = "▌"
)

// Compile-time interface checks.
var (
	_ domain.InputSink = (*UI)(nil)
	_ domain.Notifier  = (*UI)(nil)
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call the print helpers, the InputSink and Notifier methods, and read
// from [UI.InputChan] once [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	tr      *transcript.Transcript
	prefs   domain.PreferenceSource
	md      *markdown
	log     *logger.Logger
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(tr *transcript.Transcript, prefs domain.PreferenceSource, log *logger.Logger) *UI {
	return &UI{
		tr:      tr,
		prefs:   prefs,
		md:      &markdown{log: log},
		log:     log,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. Before the
// program starts or after it ends, it falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

func (u *UI) palette() palette { return paletteFor(u.prefs.Current().Theme) }

// ── Styled print helpers ─────────────────────────────────────────

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(u.palette().hint.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(u.palette().urgent.Render("  " + text))
}

// PrintBanner prints the startup banner.
func (u *UI) PrintBanner() {
	u.Println(RenderBanner(u.palette().banner))
}

// ── InputSink / Notifier ─────────────────────────────────────────

type (
	setInputMsg  string
	listeningMsg bool
	refreshMsg   struct{}
)

// SetInput replaces the content of the input field.
func (u *UI) SetInput(text string) { u.send(setInputMsg(text)) }

// SetListening toggles the listening affordance.
func (u *UI) SetListening(on bool) { u.send(listeningMsg(on)) }

// Refresh re-applies the current preferences (theme) to the UI.
func (u *UI) Refresh() { u.send(refreshMsg{}) }

// Notify prints a notice.
func (u *UI) Notify(_ context.Context, message string) error {
	u.log.Debug("notify: %s", message)
	u.PrintHint(message)
	return nil
}

// NotifyUrgent prints a notice in the alert colour.
func (u *UI) NotifyUrgent(_ context.Context, message string) error {
	u.log.Debug("notify-urgent: %s", message)
	u.PrintUrgent(message)
	return nil
}

func (u *UI) send(msg tea.Msg) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(msg)
	}
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	m := newModel(u.tr, u.prefs, u.md, u.inputCh, u.readyCh)
	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	tr      *transcript.Transcript
	prefs   domain.PreferenceSource
	md      *markdown
	input   textinput.Model
	spinner spinner.Model
	inputCh chan<- string
	readyCh chan struct{}

	width     int
	flushed   int                // entries already printed to scrollback
	live      []transcript.Entry // unsettled entries, drawn in the view
	listening bool
}

// transcriptMsg signals that the transcript changed.
type transcriptMsg struct{}

func newModel(tr *transcript.Transcript, prefs domain.PreferenceSource, md *markdown, inputCh chan<- string, readyCh chan struct{}) model {
	ti := textinput.New()
	// A plain-text prompt keeps the textinput width math correct; styled
	// prompts add ANSI bytes that break its offset calculations.
	ti.Prompt = promptText
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60 // updated on first WindowSizeMsg

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		tr:      tr,
		prefs:   prefs,
		md:      md,
		input:   ti,
		spinner: sp,
		inputCh: inputCh,
		readyCh: readyCh,
	}
	m.applyTheme()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForChange(m.tr),
		signalReady(m.readyCh),
		tea.SetWindowTitle(appName),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func waitForChange(tr *transcript.Transcript) tea.Cmd {
	return func() tea.Msg {
		<-tr.Changes()
		return transcriptMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) == "" {
				return m, nil
			}
			select {
			case m.inputCh <- v:
				return m, nil
			default:
				// The event loop must never block; keep the draft instead.
				m.input.SetValue(v)
				m.input.CursorEnd()
				return m, tea.Println(m.palette().hint.Render("  busy, press Enter again in a moment"))
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case transcriptMsg:
		// Prints run in order and only then is the next change awaited,
		// so scrollback order always matches transcript order.
		cmds := m.flush()
		cmds = append(cmds, waitForChange(m.tr))
		return m, tea.Sequence(cmds...)

	case setInputMsg:
		m.input.SetValue(string(msg))
		m.input.CursorEnd()
		return m, nil

	case listeningMsg:
		m.listening = bool(msg)
		if m.listening {
			m.input.Placeholder = "listening..."
		} else {
			m.input.Placeholder = ""
		}
		return m, nil

	case refreshMsg:
		m.applyTheme()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// flush prints every leading settled entry into the scrollback and keeps
// the rest as live entries.
func (m *model) flush() []tea.Cmd {
	entries := m.tr.Entries()
	pal := m.palette()

	var cmds []tea.Cmd
	for m.flushed < len(entries) && entries[m.flushed].Settled() {
		cmds = append(cmds, tea.Println(m.renderSettled(entries[m.flushed], pal)))
		m.flushed++
	}
	m.live = entries[m.flushed:]
	return cmds
}

func (m *model) applyTheme() {
	pal := m.palette()
	m.input.PromptStyle = pal.prompt
	m.input.TextStyle = pal.user
	m.input.PlaceholderStyle = pal.hint
	m.input.Cursor.Style = pal.prompt
	m.spinner.Style = pal.speaking
}

func (m model) palette() palette { return paletteFor(m.prefs.Current().Theme) }

// status is the one-word state shown in the bar.
func (m model) status() string {
	switch {
	case m.listening:
		return "listening"
	case len(m.live) > 0:
		return "thinking"
	default:
		return "ready"
	}
}

func (m model) View() string {
	pal := m.palette()
	var b strings.Builder

	b.WriteString(m.renderBar(pal))
	b.WriteByte('\n')

	for _, e := range m.live {
		b.WriteString(m.renderLive(e, pal))
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar(pal palette) string {
	content := " " + appName + "  │  " + pal.status.Render(m.status()) + " "
	w := m.width
	if w <= 0 {
		w = 80
	}
	return pal.bar.Width(w).Render(content)
}

func (m model) renderSettled(e transcript.Entry, pal palette) string {
	switch {
	case e.Role == transcript.RoleUser:
		return pal.userLabel.Render("you") + "  " + pal.user.Render(e.Content)
	case e.Failed:
		return pal.aiLabel.Render("ai") + "   " + pal.urgent.Render(e.Content)
	default:
		return pal.aiLabel.Render("ai") + "\n" + m.md.render(e.Content, pal.glamour, m.wrapWidth())
	}
}

func (m model) renderLive(e transcript.Entry, pal palette) string {
	label := pal.aiLabel.Render("ai")
	if e.Speaking {
		label += pal.speaking.Render(" ●")
	}
	if e.Typing {
		return label + "  " + m.spinner.View() + pal.hint.Render(" typing")
	}
	return label + "   " + pal.ai.Render(e.Content+cursorGlyph)
}

func (m model) wrapWidth() int {
	if m.width > 20 {
		return m.width - 4
	}
	return 76
}

// ── Markdown ─────────────────────────────────────────────────────

// markdown renders completed replies with glamour. The renderer is
// rebuilt only when the style or width changes.
type markdown struct {
	log *logger.Logger

	mu    sync.Mutex
	style string
	width int
	r     *glamour.TermRenderer
}

func (md *markdown) render(text, style string, width int) string {
	md.mu.Lock()
	defer md.mu.Unlock()

	if md.r == nil || md.style != style || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			md.log.Warn("display: markdown renderer: %v", err)
			return lipgloss.NewStyle().Width(width).Render(text)
		}
		md.r, md.style, md.width = r, style, width
	}

	out, err := md.r.Render(text)
	if err != nil {
		md.log.Warn("display: markdown render: %v", err)
		return text
	}
	return strings.Trim(out, "\n")
}
