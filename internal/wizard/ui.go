package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soconhq/socon/internal/connect"
	"github.com/soconhq/socon/internal/providers"
)

// keyMap defines the key bindings for the wizard.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	tab   key.Binding
	enter key.Binding
	back  key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.back, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.tab},
		{k.enter, k.back, k.quit},
	}
}

type connectDoneMsg struct {
	outcome connect.Outcome
	err     error
}

type finalizeDoneMsg struct {
	err error
}

// Model drives the connection wizard through the step [Machine].
type Model struct {
	ctx        context.Context
	machine    *Machine
	controller *connect.Controller
	submit     func(data Data) error

	platforms     []providers.Config
	platformIndex int

	keyInput    textinput.Model
	secretInput textinput.Model
	focusSecret bool

	connecting bool
	submitting bool
	err        error

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates the wizard model with the provided dependencies. The
// submit function runs when the review step is confirmed.
func NewModel(ctx context.Context, machine *Machine, controller *connect.Controller, submit func(data Data) error) *Model {
	keyInput := textinput.New()
	keyInput.Placeholder = "client id / api key"
	keyInput.Focus()

	secretInput := textinput.New()
	secretInput.Placeholder = "client secret"
	secretInput.EchoMode = textinput.EchoPassword

	return &Model{
		ctx:         ctx,
		machine:     machine,
		controller:  controller,
		submit:      submit,
		platforms:   providers.All(),
		keyInput:    keyInput,
		secretInput: secretInput,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.machine.Step() {
		case 1:
			return m.handlePlatformKeys(msg)
		case 2:
			return m.handleCredentialKeys(msg)
		case 3:
			return m.handleAuthorizeKeys(msg)
		case 4:
			return m.handleReviewKeys(msg)
		}

	case connectDoneMsg:
		m.connecting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.outcome.Status != nil {
			m.machine.Set(FieldUsername, msg.outcome.Status.Username)
		}
		m.machine.Advance()
		return m, nil

	case finalizeDoneMsg:
		m.submitting = false
		m.err = msg.err
		if msg.err == nil {
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// View renders the current step.
func (m *Model) View() string {
	var body string
	switch m.machine.Step() {
	case 1:
		body = m.renderPlatform()
	case 2:
		body = m.renderCredentials()
	case 3:
		body = m.renderAuthorize()
	case 4:
		body = m.renderReview()
	}

	header := styles.title.Render(fmt.Sprintf("Connect an account (step %d of %d)", m.machine.Step(), m.machine.Steps()))
	footer := m.help.ShortHelpView(m.keys.ShortHelp())

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error()) + "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, errLine, styles.help.Render(footer))
}

func (m *Model) handlePlatformKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.platformIndex > 0 {
			m.platformIndex--
		}
	case key.Matches(msg, m.keys.down):
		if m.platformIndex < len(m.platforms)-1 {
			m.platformIndex++
		}
	case key.Matches(msg, m.keys.enter):
		m.machine.Set(FieldPlatform, m.platforms[m.platformIndex].Platform.String())
		m.err = nil
		m.machine.Advance()
		return m, m.keyInput.Focus()
	}
	return m, nil
}

func (m *Model) handleCredentialKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.machine.Retreat()
		return m, nil
	case key.Matches(msg, m.keys.tab):
		m.focusSecret = !m.focusSecret
		if m.focusSecret {
			m.keyInput.Blur()
			return m, m.secretInput.Focus()
		}
		m.secretInput.Blur()
		return m, m.keyInput.Focus()
	case key.Matches(msg, m.keys.enter):
		if m.machine.Advance() {
			m.err = nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusSecret {
		m.secretInput, cmd = m.secretInput.Update(msg)
		m.machine.Set(FieldClientSecret, m.secretInput.Value())
	} else {
		m.keyInput, cmd = m.keyInput.Update(msg)
		m.machine.Set(FieldClientID, m.keyInput.Value())
	}
	return m, cmd
}

func (m *Model) handleAuthorizeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.connecting {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.machine.Retreat()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.connecting = true
		m.err = nil
		return m, m.startConnect()
	}
	return m, nil
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.machine.Retreat()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.submitting = true
		return m, m.startFinalize()
	}
	return m, nil
}

func (m *Model) startConnect() tea.Cmd {
	platform := m.machine.Get(FieldPlatform)
	return func() tea.Msg {
		outcome, err := m.controller.Connect(m.ctx, platform)
		return connectDoneMsg{outcome: outcome, err: err}
	}
}

func (m *Model) startFinalize() tea.Cmd {
	return func() tea.Msg {
		return finalizeDoneMsg{err: m.machine.Finalize(m.submit)}
	}
}

func (m *Model) renderPlatform() string {
	var b strings.Builder
	b.WriteString("Pick a platform to connect:\n\n")
	for i, cfg := range m.platforms {
		cursor := "  "
		name := cfg.DisplayName
		if i == m.platformIndex {
			cursor = "> "
			name = styles.ok.Render(name)
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, name)
	}
	return b.String()
}

func (m *Model) renderCredentials() string {
	cfg, err := providers.Lookup(m.machine.Get(FieldPlatform))
	if err != nil {
		return styles.err.Render(err.Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "App credentials for %s:\n\n", cfg.DisplayName)

	b.WriteString(m.keyInput.View() + "\n")
	b.WriteString(renderVerdict(providers.Validate(m.machine.Get(FieldClientID), cfg.KeyRules)))

	b.WriteString("\n" + m.secretInput.View() + "\n")
	b.WriteString(renderVerdict(providers.Validate(m.machine.Get(FieldClientSecret), cfg.SecretRules)))

	return b.String()
}

func (m *Model) renderAuthorize() string {
	if m.connecting {
		return "Waiting for authorization in your browser..."
	}
	return fmt.Sprintf("Press enter to open %s in your browser and authorize access.",
		m.machine.Get(FieldPlatform))
}

func (m *Model) renderReview() string {
	if m.submitting {
		return "Saving..."
	}

	username := m.machine.Get(FieldReviewUsername)
	return fmt.Sprintf("Connected as %s on %s.\n\nPress enter to finish.",
		styles.ok.Render("@"+username), m.machine.Get(FieldPlatform))
}

func renderVerdict(result providers.Result) string {
	switch result.Verdict {
	case providers.VerdictInvalid:
		return styles.warn.Render("  " + result.Message)
	case providers.VerdictValid:
		return styles.ok.Render("  looks good")
	default:
		return ""
	}
}
