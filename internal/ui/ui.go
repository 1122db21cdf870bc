package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/personai/persona/internal/apikey"
	"github.com/personai/persona/internal/chat"
	"github.com/personai/persona/internal/formatter"
	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	KeySetupView ViewState = iota
	ChatView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	logger  *log.Logger
	gate    *apikey.Gate
	manager *chat.Manager
	backend services.Backend
	store   models.SessionStore

	view      ViewState
	user      models.User
	session   models.Session
	exchanger *chat.Exchanger

	width  int
	height int

	transcript viewport.Model
	input      textarea.Model
	keyInput   textinput.Model
	loading    spinner.Model
	help       help.Model
	keys       keyMap

	status string
	errMsg string
}

// Opts contains the dependencies for creating a Model.
type Opts struct {
	Gate    *apikey.Gate
	Manager *chat.Manager
	Backend services.Backend
	Store   models.SessionStore
	User    models.User
	Logger  *log.Logger
}

// NewModel creates the chat TUI model.
func NewModel(ctx context.Context, opts Opts) Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	input := textarea.New()
	input.Placeholder = "What would you like to get done today?"
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	keyInput := textinput.New()
	keyInput.Placeholder = "gsk_..."
	keyInput.EchoMode = textinput.EchoPassword

	loading := spinner.New()
	loading.Spinner = spinner.Dot

	view := ChatView
	if !opts.Gate.IsPresent() {
		view = KeySetupView
		keyInput.Focus()
		input.Blur()
	}

	return Model{
		ctx:        ctx,
		logger:     opts.Logger,
		gate:       opts.Gate,
		manager:    opts.Manager,
		backend:    opts.Backend,
		store:      opts.Store,
		user:       opts.User,
		view:       view,
		transcript: viewport.New(80, 20),
		input:      input,
		keyInput:   keyInput,
		loading:    loading,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	if m.view == ChatView {
		return tea.Batch(m.openSessionCmd(), m.loading.Tick)
	}
	return m.loading.Tick
}

// openSessionCmd establishes the conversation session for this activation.
func (m Model) openSessionCmd() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	return func() tea.Msg {
		session, err := manager.Open(ctx)
		return sessionOpenedMsg(session, err)
	}
}

// finishExchangeCmd completes an exchange begun in Update. The user turn is
// already in the transcript before this command runs.
func (m Model) finishExchangeCmd(userTurn models.Turn) tea.Cmd {
	ex := m.exchanger
	ctx := m.ctx
	return func() tea.Msg {
		return exchangeDoneMsg(ex.Finish(ctx, userTurn))
	}
}

func (m Model) validateKeyCmd(candidate string) tea.Cmd {
	gate := m.gate
	ctx := m.ctx
	return func() tea.Msg {
		return keyValidatedMsg(gate.Validate(ctx, candidate))
	}
}

func (m Model) saveTranscriptCmd() tea.Cmd {
	session := m.session
	turns := m.exchanger.Turns()
	path := fmt.Sprintf("persona-transcript-%s.md", session.ID)
	return func() tea.Msg {
		return transcriptSavedMsg(path, formatter.WriteTranscript(path, session, turns))
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = msg.Width
		m.transcript.Height = msg.Height - 10
		m.input.SetWidth(msg.Width - 2)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loading, cmd = m.loading.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		if m.view == KeySetupView {
			return m.updateKeySetup(msg)
		}
		return m.updateChat(msg)

	case Msg:
		return m.updateApp(msg)
	}

	return m, nil
}

// updateApp handles the application-level message union.
func (m Model) updateApp(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionOpened:
		data := msg.data.(struct {
			session models.Session
			err     error
		})
		if data.err != nil {
			m.errMsg = data.err.Error()
			return m, nil
		}
		m.session = data.session
		m.exchanger = chat.NewExchanger(chat.ExchangerOpts{
			Backend: m.backend,
			Store:   m.store,
			Session: data.session,
			Logger:  m.logger,
		})
		m.logger.Info("conversation session opened", "chat_id", data.session.ID, "degraded", data.session.Degraded)
		m.refreshTranscript()

	case MsgExchangeDone:
		m.refreshTranscript()

	case MsgKeyValidated:
		if err, ok := msg.data.(error); ok && err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		// Key absent -> present: re-open the conversation session.
		m.errMsg = ""
		m.view = ChatView
		m.keyInput.Blur()
		m.input.Focus()
		return m, m.openSessionCmd()

	case MsgTranscriptSaved:
		data := msg.data.(struct {
			path string
			err  error
		})
		if data.err != nil {
			m.errMsg = data.err.Error()
		} else {
			m.status = fmt.Sprintf("Transcript saved to %s", data.path)
		}
	}

	return m, nil
}

func (m Model) updateKeySetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.send) {
		candidate := m.keyInput.Value()
		m.errMsg = ""
		m.status = "Validating..."
		return m, m.validateKeyCmd(candidate)
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.send):
		if m.exchanger == nil {
			return m, nil
		}
		// Optimistic append happens here, before the network command runs.
		userTurn, ok := m.exchanger.Begin(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.status = ""
		m.refreshTranscript()
		return m, m.finishExchangeCmd(userTurn)

	case key.Matches(msg, m.keys.save):
		if m.exchanger == nil || len(m.exchanger.Turns()) == 0 {
			return m, nil
		}
		return m, m.saveTranscriptCmd()

	case key.Matches(msg, m.keys.keys):
		m.view = KeySetupView
		m.keyInput.SetValue("")
		m.keyInput.Focus()
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(m.renderTurns())
	m.transcript.GotoBottom()
}

func (m Model) renderTurns() string {
	if m.exchanger == nil {
		return ""
	}

	turns := m.exchanger.Turns()
	if len(turns) == 0 {
		return m.renderWelcome()
	}

	var b strings.Builder
	for _, turn := range turns {
		label := styles.user.Render(turn.Role.DisplayName())
		if turn.Role == models.RoleAssistant {
			label = styles.assistant.Render(turn.Role.DisplayName())
		}
		b.WriteString(fmt.Sprintf("%s  %s\n%s\n\n", label, styles.help.Render(turn.Timestamp.Format("15:04")), turn.Content))
	}

	if m.exchanger.Loading() {
		b.WriteString(fmt.Sprintf("%s %s Thinking...\n", styles.assistant.Render("Persona"), m.loading.View()))
	}

	return b.String()
}

func (m Model) renderWelcome() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Your productivity assistant is ready"))
	b.WriteString("\n\n")
	b.WriteString("Everything you need is just a conversation away.\n\n")
	b.WriteString(styles.help.Render("What can I help you with?"))
	b.WriteString("\n")
	for _, s := range []string{
		`"What's my schedule today?"`,
		`"Send recap email to team"`,
		`"Add task: Call client at 3pm"`,
		`"Find emails from last week"`,
	} {
		b.WriteString("  • " + s + "\n")
	}
	return b.String()
}

func (m Model) View() string {
	if m.view == KeySetupView {
		return m.viewKeySetup()
	}
	return m.viewChat()
}

func (m Model) viewKeySetup() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("API Key Setup"))
	b.WriteString("\n")
	b.WriteString("Bring your own Groq API key to get started.\n")
	b.WriteString(styles.help.Render("Create one at console.groq.com, then paste it below."))
	b.WriteString("\n\n")
	b.WriteString(m.keyInput.View())
	b.WriteString("\n\n")
	if m.errMsg != "" {
		b.WriteString(styles.err.Render(m.errMsg) + "\n")
	} else if m.status != "" {
		b.WriteString(styles.warn.Render(m.status) + "\n")
	}
	b.WriteString(styles.help.Render("enter to validate • esc to quit"))
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder

	keyState := styles.err.Render("no API key")
	if m.gate.IsPresent() {
		keyState = styles.ok.Render("API key active")
	}
	sessionState := ""
	if m.session.Degraded {
		sessionState = "  " + styles.warn.Render("local session")
	}
	b.WriteString(styles.title.Render("Persona") + "\n")
	b.WriteString(fmt.Sprintf("%s  •  %s%s\n\n", m.user.DisplayName(), keyState, sessionState))

	b.WriteString(m.transcript.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(styles.err.Render(m.errMsg) + "\n")
	} else if m.status != "" {
		b.WriteString(styles.ok.Render(m.status) + "\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
