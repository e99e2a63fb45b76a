// Package tui implements the --tui live progress view with bubbletea.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/format"
	"github.com/agbru/saxpy/internal/orchestration"
	"github.com/agbru/saxpy/internal/sysmon"
)

const (
	// SampleInterval is how often host statistics are refreshed.
	SampleInterval = 500 * time.Millisecond
	// HistoryLength is the number of host samples kept for the sparklines.
	HistoryLength = 40
	barWidth      = 30
)

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	exitCode   int
	results    []orchestration.RunResult
}

// Model is the root bubbletea model of the progress view.
type Model struct {
	spinner spinner.Model
	help    help.Model
	keymap  KeyMap

	ExecutionState

	parentCtx context.Context
	spec      orchestration.RunSpec
	opts      orchestration.PresentationOptions
	version   string
	ref       *programRef
	start     func(ref sender, ctx context.Context, spec orchestration.RunSpec, opts orchestration.PresentationOptions, gen uint64) tea.Cmd

	progress []float64
	average  float64
	eta      time.Duration
	cpu      *History
	mem      *History

	comparison []orchestration.RunResult
	final      *FinalResultMsg
	failure    *ErrorMsg

	paused    bool
	width     int
	startTime time.Time
	elapsed   time.Duration
}

// NewModel creates a new TUI model.
func NewModel(parentCtx context.Context, spec orchestration.RunSpec, opts orchestration.PresentationOptions, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle))
	return Model{
		spinner: sp,
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		parentCtx: parentCtx,
		spec:      spec,
		opts:      opts,
		version:   version,
		ref:       &programRef{},
		start:     startRunCmd,
		progress:  make([]float64, len(spec.Modes)),
		cpu:       NewHistory(HistoryLength),
		mem:       NewHistory(HistoryLength),
		startTime: time.Now(),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
		m.start(m.ref, m.ctx, m.spec, m.opts, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		if !m.paused {
			if msg.RunIndex >= 0 && msg.RunIndex < len(m.progress) {
				m.progress[msg.RunIndex] = msg.Value
			}
			m.average = msg.AverageProgress
			m.eta = msg.ETA
		}
		return m, nil

	case ProgressDoneMsg:
		m.eta = 0
		return m, nil

	case ComparisonResultsMsg:
		m.comparison = msg.Results
		return m, nil

	case FinalResultMsg:
		m.final = &msg
		return m, nil

	case ErrorMsg:
		m.failure = &msg
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleSysStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.cpu.Add(msg.CPUPercent)
		m.mem.Add(msg.MemPercent)
		return m, nil

	case RunCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil // stale message from a previous run
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.results = msg.Results
		m.elapsed = time.Since(m.startTime)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		if !m.done {
			m.exitCode = apperrors.ExitErrorGeneric
		}
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			// Workers cannot be interrupted; the abandoned batch yields no result.
			m.exitCode = apperrors.ExitErrorGeneric
		}
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		if !m.done {
			return m, nil
		}
		m.cancel()
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)
		m.done, m.paused = false, false
		m.exitCode = apperrors.ExitSuccess
		m.results, m.comparison, m.final, m.failure = nil, nil, nil, nil
		m.progress = make([]float64, len(m.spec.Modes))
		m.average, m.eta = 0, 0
		m.cpu.Reset()
		m.mem.Reset()
		m.startTime = time.Now()
		return m, tea.Batch(
			m.spinner.Tick,
			tickCmd(),
			m.start(m.ref, m.ctx, m.spec, m.opts, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)
	}
	return m, nil
}

// View renders the progress view.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	sections := []string{m.headerView(), panelStyle.Render(m.progressView())}
	if stats := m.statsView(); stats != "" {
		sections = append(sections, stats)
	}
	if res := m.resultView(); res != "" {
		sections = append(sections, panelStyle.Render(res))
	}
	sections = append(sections, helpStyle.Render(m.help.ShortHelpView(m.keymap.ShortHelp())))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := "SAXPY"
	if m.version != "" && m.version != "dev" {
		title += " " + m.version
	}
	params := labelStyle.Render(fmt.Sprintf("p=%d  threads=%d  iterations=%d", m.spec.N, m.spec.Threads, m.spec.Iterations))

	var status string
	switch {
	case m.done && (m.failure != nil || m.exitCode != apperrors.ExitSuccess):
		status = errorStyle.Render(fmt.Sprintf("failed (exit %d)", m.exitCode))
	case m.done:
		status = successStyle.Render("done in " + format.FormatExecutionDuration(m.elapsed))
	case m.paused:
		status = pausedStyle.Render("view frozen")
	default:
		status = m.spinner.View() + " running"
	}
	return titleStyle.Render(title) + "  " + params + "  " + status
}

func (m Model) progressView() string {
	var b strings.Builder
	nameWidth := 7
	for _, mode := range m.spec.Modes {
		nameWidth = max(nameWidth, len(mode))
	}
	for i, mode := range m.spec.Modes {
		fmt.Fprintf(&b, "%-*s %s %6.2f%%\n", nameWidth, mode, renderBar(m.progress[i], barWidth), m.progress[i]*100)
	}
	fmt.Fprintf(&b, "%-*s %s", nameWidth, "overall", valueStyle.Render(fmt.Sprintf("%.2f%%", m.average*100)))
	if m.eta > 0 && !m.done {
		fmt.Fprintf(&b, "  ETA %s", format.FormatExecutionDuration(m.eta))
	}
	return b.String()
}

func (m Model) statsView() string {
	if m.cpu.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%s %s %5.1f%%   %s %s %5.1f%%",
		labelStyle.Render("CPU"), sparklineStyle.Render(m.cpu.Sparkline()), m.cpu.Last(),
		labelStyle.Render("MEM"), sparklineStyle.Render(m.mem.Sparkline()), m.mem.Last())
}

func (m Model) resultView() string {
	var lines []string
	if len(m.comparison) > 1 {
		for _, r := range m.comparison {
			status := successStyle.Render("ok")
			if r.Err != nil {
				status = errorStyle.Render("failed")
			}
			lines = append(lines, fmt.Sprintf("%-7s %s  %s", r.Mode, format.FormatMilliseconds(r.Duration), status))
		}
	}
	if m.failure != nil {
		lines = append(lines, errorStyle.Render("Error: ")+m.failure.Err.Error())
	}
	if m.final != nil && m.final.Result.Result != nil {
		r := m.final.Result.Result
		lines = append(lines,
			titleStyle.Render(fmt.Sprintf("Result (%s accumulation)", m.final.Result.Mode)),
			"Execution time: "+format.FormatMilliseconds(r.Elapsed),
			"Last values of Y: "+format.FormatTail(r.Y, 3),
			"Last values of Y_avgs: "+format.FormatTail(r.Averages, 3),
		)
	}
	return strings.Join(lines, "\n")
}

func renderBar(progress float64, width int) string {
	full := int(min(max(progress, 0), 1) * float64(width))
	return barFullStyle.Render(strings.Repeat("█", full)) + barEmptyStyle.Render(strings.Repeat("░", width-full))
}

// Outcome is what a TUI session produced.
type Outcome struct {
	ExitCode int
	// Results holds the runs of the last completed batch, nil if the user
	// quit before it finished.
	Results []orchestration.RunResult
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the outcome.
func Run(ctx context.Context, spec orchestration.RunSpec, opts orchestration.PresentationOptions, version string) Outcome {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, spec, opts, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return Outcome{ExitCode: apperrors.ExitErrorGeneric}
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return Outcome{ExitCode: m.exitCode, Results: m.results}
	}
	return Outcome{ExitCode: apperrors.ExitSuccess}
}

// startRunCmd returns a tea.Cmd that executes and analyzes the batch.
func startRunCmd(ref sender, ctx context.Context, spec orchestration.RunSpec, opts orchestration.PresentationOptions, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref}
		presenter := &TUIResultPresenter{ref: ref}
		results := orchestration.ExecuteRuns(ctx, spec, reporter, io.Discard)
		exitCode := orchestration.AnalyzeResults(results, opts, presenter, presenter, io.Discard)
		return RunCompleteMsg{ExitCode: exitCode, Results: results, Generation: gen}
	}
}

// tickCmd returns a command that sends a TickMsg after SampleInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(SampleInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleSysStatsCmd reads system-wide CPU and memory stats.
func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
