package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wit-bindgen-go/host"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	argStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var fieldNames = [4]string{"old_ptr", "old_len", "align", "new_len"}

// maxHistory is the number of calls shown.
const maxHistory = 12

type callModel struct {
	err      error
	guest    *guest
	alloc    *host.Allocator
	log      *zap.Logger
	filename string
	history  []Row
	inputs   [4]textinput.Model
	focusIdx int
}

type loadedMsg struct {
	err   error
	guest *guest
	alloc *host.Allocator
}

type callResultMsg struct {
	row Row
}

func newCallModel(filename string, log *zap.Logger) *callModel {
	m := &callModel{filename: filename, log: log}
	for i, name := range fieldNames {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-8s", name) + ": "
		ti.Placeholder = "0"
		ti.Width = 12
		ti.Validate = validateU32
		m.inputs[i] = ti
	}
	m.inputs[2].Placeholder = "8"
	m.inputs[0].Focus()
	return m
}

func validateU32(s string) error {
	if s == "" {
		return nil
	}
	_, err := strconv.ParseUint(s, 0, 32)
	return err
}

func (m *callModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load)
}

func (m *callModel) load() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	g, err := load(ctx, data, m.log)
	if err != nil {
		return loadedMsg{err: err}
	}
	a, err := host.FindAllocator(g.mod)
	if err != nil {
		g.Close(ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{guest: g, alloc: a}
}

func (m *callModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.guest != nil {
				m.guest.Close(context.Background())
			}
			return m, tea.Quit

		case "tab", "down":
			m.focus((m.focusIdx + 1) % len(m.inputs))
			return m, nil

		case "shift+tab", "up":
			m.focus((m.focusIdx + len(m.inputs) - 1) % len(m.inputs))
			return m, nil

		case "enter":
			if m.alloc != nil {
				return m, m.call
			}
		}

	case loadedMsg:
		m.err = msg.err
		m.guest = msg.guest
		m.alloc = msg.alloc
		return m, nil

	case callResultMsg:
		m.history = append(m.history, msg.row)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		// Chain the next request from the returned block.
		if msg.row.Err == nil && msg.row.NewLen > 0 {
			m.inputs[0].SetValue(strconv.FormatUint(uint64(msg.row.Ptr), 10))
			m.inputs[1].SetValue(strconv.FormatUint(uint64(msg.row.NewLen), 10))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m *callModel) focus(i int) {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = i
	m.inputs[i].Focus()
}

func (m *callModel) args() [4]uint32 {
	var args [4]uint32
	for i, in := range m.inputs {
		s := in.Value()
		if s == "" {
			s = in.Placeholder
		}
		v, _ := strconv.ParseUint(s, 0, 32)
		args[i] = uint32(v)
	}
	return args
}

func (m *callModel) call() tea.Msg {
	args := m.args()
	row := Row{OldPtr: args[0], OldLen: args[1], Align: args[2], NewLen: args[3]}
	row.Ptr, row.Err = m.alloc.Call(context.Background(), row.OldPtr, row.OldLen, row.Align, row.NewLen)
	row.OK = row.Err == nil
	return callResultMsg{row: row}
}

func (m *callModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.alloc == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("cabi_realloc"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, row := range m.history {
		b.WriteString(argStyle.Render(fmt.Sprintf("(%d, %d, %d, %d)", row.OldPtr, row.OldLen, row.Align, row.NewLen)))
		b.WriteString(" -> ")
		if row.Err != nil {
			b.WriteString(errorStyle.Render(row.Err.Error()))
		} else {
			b.WriteString(resultStyle.Render(strconv.FormatUint(uint64(row.Ptr), 10)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field • enter call • esc quit"))

	return b.String()
}

func runInteractive(filename string, log *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newCallModel(filename, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
