package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type phase int

const (
	phaseResizing phase = iota
	phaseDone
)

type model struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *Config

	currentPhase phase
	spinner      spinner.Model
	progress     progress.Model

	// Batch state
	journal      *Journal
	journalWarn  string
	batchProg    Progress
	result       *BatchResult
	statusMsg    string
	progressChan chan Progress

	// UI state
	width  int
	height int

	interrupted bool
	err         error
}

type batchCompleteMsg struct {
	result *BatchResult
	err    error
}

type progressMsg Progress

func initialModel(ctx context.Context, config *Config) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(), // percentage is rendered as suffix text
	)
	p.Width = 60

	var journal *Journal
	var journalWarn string
	if config.SkipUnchanged {
		j, err := OpenJournal(config.OutputDir, config.Fingerprint())
		if err != nil {
			journalWarn = fmt.Sprintf("skip journal disabled: %v", err)
		} else {
			journal = j
		}
	}

	ctx, cancel := context.WithCancel(ctx)

	return model{
		ctx:          ctx,
		cancel:       cancel,
		config:       config,
		spinner:      s,
		progress:     p,
		currentPhase: phaseResizing,
		journal:      journal,
		journalWarn:  journalWarn,
		statusMsg:    "Resizing images...",
		progressChan: make(chan Progress, 100),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		runBatch(m.ctx, m.config, m.journal, m.progressChan),
		waitForProgress(m.progressChan),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Account for: left margin (2) + suffix text like " 100% (9999/9999 files)" (~30)
		progressWidth := msg.Width - 35
		if progressWidth < 20 {
			progressWidth = 20
		}
		m.progress.Width = progressWidth
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// A finished batch or a fatal error leaves nothing to cancel.
			if m.currentPhase == phaseDone || m.err != nil {
				return m, tea.Quit
			}
			// Cancel the batch and wait for it to wind down between files.
			m.interrupted = true
			m.statusMsg = "Interrupting..."
			m.cancel()
			return m, nil

		case "enter":
			if m.currentPhase == phaseDone {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.batchProg = Progress(msg)
		if m.currentPhase == phaseResizing {
			return m, waitForProgress(m.progressChan)
		}
		return m, nil

	case batchCompleteMsg:
		if m.journal != nil {
			m.journal.Close()
			m.journal = nil
		}
		m.result = msg.result
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
			return m, nil
		}
		if m.interrupted || errors.Is(msg.err, context.Canceled) {
			m.interrupted = true
			return m, tea.Quit
		}
		m.currentPhase = phaseDone
		m.statusMsg = fmt.Sprintf("Complete! %d processed, %d failed, %d skipped",
			msg.result.Processed, msg.result.Failed, msg.result.Skipped)
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit", m.err)
	}

	var b strings.Builder

	b.WriteString("\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		MarginLeft(2)

	b.WriteString(titleStyle.Render("Batch Image Resizer"))
	b.WriteString("\n\n")

	configStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginLeft(2)
	formatStr := "keep format"
	if m.config.OutputFormat != "" {
		formatStr = "to " + m.config.OutputFormat
	}
	aspectStr := ""
	if !m.config.KeepAspect {
		aspectStr = " | distort"
	}
	b.WriteString(configStyle.Render(fmt.Sprintf(
		"%s → %s | %dx%d | %s%s",
		truncatePath(m.config.InputDir, 25),
		truncatePath(m.config.OutputDir, 25),
		m.config.TargetWidth,
		m.config.TargetHeight,
		formatStr,
		aspectStr,
	)))
	b.WriteString("\n\n")

	// Phase indicator
	b.WriteString("  ")
	phases := []string{"Resizing", "Done"}
	for i, name := range phases {
		if i > 0 {
			b.WriteString(" → ")
		}
		if int(m.currentPhase) == i {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render(name))
		} else if int(m.currentPhase) > i {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("✓"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(name))
		}
	}
	b.WriteString("\n\n")

	switch m.currentPhase {
	case phaseResizing:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", m.spinner.View(), m.statusMsg))

		if m.journalWarn != "" {
			warnStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color("178")).
				MarginLeft(2)
			b.WriteString(warnStyle.Render("Warning: " + m.journalWarn))
			b.WriteString("\n\n")
		}

		if m.batchProg.TotalFiles > 0 {
			percent := float64(m.batchProg.ProcessedFiles) / float64(m.batchProg.TotalFiles)
			b.WriteString("  ")
			b.WriteString(m.progress.ViewAs(percent))
			b.WriteString(fmt.Sprintf(" %d%% (%d/%d files)\n\n",
				int(percent*100),
				m.batchProg.ProcessedFiles,
				m.batchProg.TotalFiles))
		}

		if m.batchProg.CurrentFile != "" {
			maxLen := m.width - 20
			if maxLen < 40 {
				maxLen = 40
			}
			fileStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				MarginLeft(2)
			b.WriteString(fmt.Sprintf("\n%s", fileStyle.Render(truncatePath(m.batchProg.CurrentFile, maxLen))))
		}

	case phaseDone:
		doneStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			MarginLeft(2)
		b.WriteString(doneStyle.Render("✓ " + m.statusMsg))
		b.WriteString("\n\n")

		outStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginLeft(2)
		b.WriteString(outStyle.Render("Output folder: " + m.config.OutputDir))
		b.WriteString("\n")
	}

	b.WriteString("\n\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginLeft(2)
	if m.currentPhase == phaseDone {
		b.WriteString(helpStyle.Render("enter: quit • q: quit"))
	} else {
		b.WriteString(helpStyle.Render("q: abort"))
	}
	b.WriteString("\n")

	return b.String()
}

// Commands

func runBatch(ctx context.Context, config *Config, journal *Journal, progressChan chan Progress) tea.Cmd {
	return func() tea.Msg {
		result, err := RunBatch(ctx, config, journal, nopReporter{}, progressChan)
		close(progressChan)
		return batchCompleteMsg{result: result, err: err}
	}
}

// waitForProgress relays one progress snapshot from the batch to the UI.
func waitForProgress(progressChan <-chan Progress) tea.Cmd {
	return func() tea.Msg {
		prog, ok := <-progressChan
		if !ok {
			// Channel closed, batch finished
			return nil
		}
		return progressMsg(prog)
	}
}

// truncatePath shortens a file path for display
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	if maxLen > 10 {
		return "..." + path[len(path)-maxLen+3:]
	}

	return path[:maxLen]
}
