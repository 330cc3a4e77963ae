package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
)

// PanelConfig configures the live panel
type PanelConfig struct {
	Controller   *session.Controller
	PollInterval time.Duration
	Header       string
}

// PanelResult describes how the panel ended
type PanelResult struct {
	// SessionEnded is true when the server rejected the credential or the
	// operator logged out, as opposed to just quitting.
	SessionEnded bool
	Err          error
}

type statusLine struct {
	text string
	tone session.Tone
}

// panelModel is the bubbletea model for the live moderation panel
type panelModel struct {
	ctx      context.Context
	ctrl     *session.Controller
	config   PanelConfig
	state    *api.ServiceState
	statuses map[session.Area]statusLine
	kick     bool
	ended    bool
	err      error
	width    int
}

// Messages for bubbletea
type (
	statusMsg struct {
		area session.Area
		text string
		tone session.Tone
	}
	serviceStateMsg api.ServiceState
	navigateMsg     session.View
	pollMsg         struct{}
	enteredMsg      struct{ err error }
	actionDoneMsg   struct{}
)

// programListener forwards controller events into the bubbletea event loop.
type programListener struct {
	program *tea.Program
}

func (l programListener) StateChanged(s session.State) {
	logger.Debug("Session state: %s", s)
}

func (l programListener) Navigate(v session.View) {
	l.program.Send(navigateMsg(v))
}

func (l programListener) ServiceStateChanged(s api.ServiceState) {
	l.program.Send(serviceStateMsg(s))
}

func (l programListener) Status(area session.Area, text string, tone session.Tone) {
	l.program.Send(statusMsg{area: area, text: text, tone: tone})
}

func newPanelModel(ctx context.Context, config PanelConfig) *panelModel {
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	return &panelModel{
		ctx:      ctx,
		ctrl:     config.Controller,
		config:   config,
		statuses: make(map[session.Area]statusLine),
	}
}

// RunPanel enters the panel and runs the dashboard until the operator quits or
// the session ends.
func RunPanel(ctx context.Context, config PanelConfig) (PanelResult, error) {
	model := newPanelModel(ctx, config)

	program := tea.NewProgram(model, tea.WithContext(ctx))
	config.Controller.SetListener(programListener{program: program})
	defer config.Controller.SetListener(nil)

	finalModel, err := program.Run()
	if err != nil && ctx.Err() == nil {
		return PanelResult{}, err
	}

	if m, ok := finalModel.(*panelModel); ok {
		return PanelResult{SessionEnded: m.ended, Err: m.err}, nil
	}
	return PanelResult{}, nil
}

// Init initializes the model
func (m *panelModel) Init() tea.Cmd {
	return func() tea.Msg {
		return enteredMsg{err: m.ctrl.EnterPanel(m.ctx)}
	}
}

// Update handles messages
func (m *panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case enteredMsg:
		if msg.err != nil {
			m.err = msg.err
			m.ended = true
			return m, tea.Quit
		}
		return m, m.tickPoll()

	case pollMsg:
		return m, tea.Sequence(m.run(func(ctx context.Context) {
			if _, err := m.ctrl.Refresh(ctx); err != nil {
				logger.Debug("State refresh failed: %v", err)
			}
		}), m.tickPoll())

	case serviceStateMsg:
		state := api.ServiceState(msg)
		m.state = &state
		return m, nil

	case statusMsg:
		m.statuses[msg.area] = statusLine{text: msg.text, tone: msg.tone}
		return m, nil

	case navigateMsg:
		if session.View(msg) == session.ViewLogin {
			m.ended = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m *panelModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		return m, m.run(func(ctx context.Context) { _ = m.ctrl.Reload(ctx) })
	case "s":
		if m.state == nil {
			m.statuses[session.AreaShutdown] = statusLine{text: "State not loaded yet.", tone: session.ToneBad}
			return m, nil
		}
		enabled := !m.state.ShutdownEnabled
		kick := m.kick
		return m, m.run(func(ctx context.Context) { _ = m.ctrl.SetShutdown(ctx, enabled, kick) })
	case "k":
		m.kick = !m.kick
		return m, nil
	case "w":
		return m, m.run(func(ctx context.Context) { _, _ = m.ctrl.WhoAmI(ctx) })
	case "i":
		return m, m.run(func(ctx context.Context) { _, _ = m.ctrl.InspectState(ctx) })
	case "l":
		return m, m.run(func(ctx context.Context) { _ = m.ctrl.Logout(ctx) })
	}
	return m, nil
}

// run executes fn off the event loop. Its effects arrive as listener messages.
func (m *panelModel) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return actionDoneMsg{}
	}
}

func (m *panelModel) tickPoll() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(logger.ColorLightGray))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(logger.ColorSuccess))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(logger.ColorError))
	onStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(logger.ColorWarning))
)

func renderTone(text string, tone session.Tone) string {
	switch tone {
	case session.ToneOK:
		return okStyle.Render(text)
	case session.ToneBad:
		return badStyle.Render(text)
	case session.ToneProgress:
		return dimStyle.Render(text)
	default:
		return text
	}
}

// View renders the model
func (m *panelModel) View() string {
	var sb strings.Builder

	header := m.config.Header
	if header == "" {
		header = "Moderation panel"
	}
	sb.WriteString(titleStyle.Render(header))
	sb.WriteString("\n\n")

	if conn, ok := m.statuses[session.AreaConnection]; ok {
		sb.WriteString("Connection: ")
		sb.WriteString(renderTone(conn.text, conn.tone))
		sb.WriteString("\n")
	}

	sb.WriteString("Shutdown mode: ")
	if hint, ok := m.statuses[session.AreaHint]; ok {
		if m.state != nil && m.state.ShutdownEnabled && hint.tone == session.TonePlain {
			sb.WriteString(onStyle.Render(hint.text))
		} else {
			sb.WriteString(renderTone(hint.text, hint.tone))
		}
	} else {
		sb.WriteString(dimStyle.Render("unknown"))
	}
	sb.WriteString("\n")

	if m.state != nil && m.state.UpdatedAt != nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("Updated %s", humanize.Time(*m.state.UpdatedAt))))
		sb.WriteString("\n")
	}

	kick := "[ ]"
	if m.kick {
		kick = "[x]"
	}
	sb.WriteString(fmt.Sprintf("Kick existing players on shutdown: %s\n", kick))

	for _, area := range []session.Area{session.AreaShutdown, session.AreaWhoAmI, session.AreaInspect} {
		line, ok := m.statuses[area]
		if !ok || line.text == "" {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(renderTone(m.truncate(line.text), line.tone))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("r reload • s toggle shutdown • k kick existing • w who am i • i inspect state • l logout • q quit"))
	sb.WriteString("\n")

	return sb.String()
}

// truncate clips each line of text to the terminal width in cells.
func (m *panelModel) truncate(text string) string {
	if m.width <= 3 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "...")
	}
	return strings.Join(lines, "\n")
}
