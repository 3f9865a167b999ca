// Package wizard implements the interactive terminal flow for exporting
// database metadata. It walks the user from engine selection through
// connection details to a confirm-and-export screen and writes the same
// two documents as the command line front end.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F5FD7")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5FD7")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)

// ErrNotATerminal is returned when the wizard is started without a TTY.
var ErrNotATerminal = errors.New("wizard requires an interactive terminal")

type step int

const (
	stepWelcome step = iota
	stepChooseEngine
	stepHost
	stepPort
	stepDatabase
	stepUsername
	stepPassword
	stepSchema
	stepConfirm
	stepProgress
	stepDone
)

var engineChoices = []string{"sqlite", "postgres", "mysql"}

type model struct {
	step      step
	engineIdx int

	inputBuffer string

	host     string
	port     string
	database string
	username string
	password string
	schema   string

	// assembled when the flow reaches the confirm screen
	connection string

	result string
	failed bool

	spinner spinner.Model
	logger  zerolog.Logger
	width   int
	height  int
}

type exportDoneMsg struct{ err error }

func newModel(logger zerolog.Logger) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = selectedStyle

	return model{
		step:    stepWelcome,
		spinner: s,
		logger:  logger,
	}
}

func (m model) engine() string {
	return engineChoices[m.engineIdx]
}

func (m model) settings() settings {
	return settings{
		Engine:   m.engine(),
		Host:     m.host,
		Port:     m.port,
		Database: m.database,
		Username: m.username,
		Password: m.password,
		Schema:   m.schema,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.step == stepProgress {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)

			return m, cmd
		}

		return m, nil

	case exportDoneMsg:
		m.step = stepDone
		if msg.err != nil {
			m.failed = true
			m.result = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.result = "Export completed!"
		}

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.step {
	case stepWelcome:
		// any key begins the flow
		m.step = stepChooseEngine
		return m, nil

	case stepChooseEngine:
		return m.handleChooseEngine(msg)

	case stepHost, stepPort, stepDatabase, stepUsername, stepPassword, stepSchema:
		return m.handleTextEntry(msg)

	case stepConfirm:
		return m.handleConfirm(msg)

	case stepProgress:
		return m, nil

	case stepDone:
		if key := msg.String(); key == "enter" || key == "esc" {
			return m, tea.Quit
		}

		return m, nil
	}

	return m, nil
}

func (m model) handleChooseEngine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.engineIdx > 0 {
			m.engineIdx--
		}

	case "down":
		if m.engineIdx+1 < len(engineChoices) {
			m.engineIdx++
		}

	case "enter":
		if m.engine() == "sqlite" {
			m.step = stepDatabase
		} else {
			m.step = stepHost
		}

		m.inputBuffer = ""

	case "esc":
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handleTextEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.commitInput(), nil

	case "esc":
		return m.backtrack(), nil

	case "backspace":
		if len(m.inputBuffer) > 0 {
			m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
		}

		return m, nil

	default:
		char := msg.String()
		if msg.Type == tea.KeyRunes {
			char = string(msg.Runes)
		} else if char == "space" {
			char = " "
		} else if len(char) != 1 {
			return m, nil
		}

		m.inputBuffer += char

		return m, nil
	}
}

// commitInput stores the buffer in the field for the current step and
// advances. SQLite skips the server steps, so the database name leads
// straight to the confirm screen.
func (m model) commitInput() model {
	switch m.step {
	case stepHost:
		m.host = m.inputBuffer
		m.step = stepPort

	case stepPort:
		m.port = m.inputBuffer
		m.step = stepDatabase

	case stepDatabase:
		m.database = m.inputBuffer
		if m.engine() == "sqlite" {
			m.connection = m.settings().connectionString()
			m.step = stepConfirm
		} else {
			m.step = stepUsername
		}

	case stepUsername:
		m.username = m.inputBuffer
		m.step = stepPassword

	case stepPassword:
		m.password = m.inputBuffer
		m.step = stepSchema

	case stepSchema:
		m.schema = m.inputBuffer
		m.connection = m.settings().connectionString()
		m.step = stepConfirm
	}

	m.inputBuffer = ""

	return m
}

func (m model) backtrack() model {
	switch m.step {
	case stepHost:
		m.step = stepChooseEngine

	case stepPort:
		m.step = stepHost

	case stepDatabase:
		if m.engine() == "sqlite" {
			m.step = stepChooseEngine
		} else {
			m.step = stepPort
		}

	case stepUsername:
		m.step = stepDatabase

	case stepPassword:
		m.step = stepUsername

	case stepSchema:
		m.step = stepPassword
	}

	return m
}

func (m model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.step = stepProgress
		return m, tea.Batch(m.spinner.Tick, m.runExport())

	case "esc":
		if m.engine() == "sqlite" {
			m.step = stepDatabase
		} else {
			m.step = stepSchema
		}
	}

	return m, nil
}

func (m model) runExport() tea.Cmd {
	settings := m.settings()
	logger := m.logger

	return func() tea.Msg {
		return exportDoneMsg{err: runExport(context.Background(), settings, logger)}
	}
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(" DBMetaExporter "))
	b.WriteString("\n\n")

	switch m.step {
	case stepWelcome:
		b.WriteString(normalStyle.Render("Welcome! Press any key to begin."))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("ctrl+c: quit"))

	case stepChooseEngine:
		b.WriteString(normalStyle.Render("Select Database Type"))
		b.WriteString("\n\n")

		for i, choice := range engineChoices {
			if i == m.engineIdx {
				b.WriteString(selectedStyle.Render("> " + choice))
			} else {
				b.WriteString(normalStyle.Render("  " + choice))
			}

			b.WriteString("\n")
		}

		b.WriteString(helpStyle.Render("↑/↓: select | enter: confirm | esc: quit"))

	case stepHost:
		b.WriteString(m.renderInput("Enter Host (e.g. localhost)", m.inputBuffer))

	case stepPort:
		b.WriteString(m.renderInput("Enter Port (e.g. 5432)", m.inputBuffer))

	case stepDatabase:
		b.WriteString(m.renderInput("Enter Database Name (or SQLite file path)", m.inputBuffer))

	case stepUsername:
		b.WriteString(m.renderInput("Enter Username", m.inputBuffer))

	case stepPassword:
		masked := strings.Repeat("*", len([]rune(m.inputBuffer)))
		b.WriteString(m.renderInput("Enter Password (hidden)", masked))

	case stepSchema:
		b.WriteString(m.renderInput("Enter Schema/Database (optional)", m.inputBuffer))

	case stepConfirm:
		summary := fmt.Sprintf("DB: %s\nConn: %s\nUser: %s\nSchema: %s",
			m.engine(), m.connection, m.username, m.schema)
		b.WriteString(borderStyle.Render(summary))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("Press Enter to Export, Esc to Cancel"))

	case stepProgress:
		b.WriteString(m.spinner.View())
		b.WriteString(normalStyle.Render(" Exporting... please wait"))

	case stepDone:
		if m.failed {
			b.WriteString(errorStyle.Render(m.result))
		} else {
			b.WriteString(successStyle.Render(m.result))
		}

		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc: exit"))
	}

	return b.String()
}

func (m model) renderInput(title, value string) string {
	var b strings.Builder

	b.WriteString(normalStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(borderStyle.Render(selectedStyle.Render("> ") + value))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: next | backspace: erase | esc: back"))

	return b.String()
}

// Run starts the interactive wizard on the current terminal.
func Run(logger zerolog.Logger) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return ErrNotATerminal
	}

	p := tea.NewProgram(newModel(logger), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard terminated: %w", err)
	}

	return nil
}
