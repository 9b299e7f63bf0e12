package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/lexis/internal/engine"
	"github.com/papapumpkin/lexis/internal/lexicon"
	"github.com/papapumpkin/lexis/internal/sentence"
)

const (
	// MaxLogLines is how many recent events the log panel keeps.
	MaxLogLines = 12
	// TopWords is how many of the fittest words are listed.
	TopWords = 8

	minInterval = 50 * time.Millisecond
	maxInterval = 10 * time.Second
)

// Lexicon is the surface the model drives. *node.Node satisfies it.
type Lexicon interface {
	Advance(ctx context.Context) (engine.Result, error)
	Sentence() sentence.Sentence
	Snapshot() *lexicon.State
}

type tickMsg time.Time

type advancedMsg struct {
	res engine.Result
	err error
}

type sentenceMsg sentence.Sentence

// Model is the bubbletea model for the live lexicon view.
type Model struct {
	Lexicon  Lexicon
	Keys     KeyMap
	Interval time.Duration
	Paused   bool
	Width    int
	Height   int

	State    *lexicon.State
	Log      []lexicon.LoggedEvent
	Sentence sentence.Sentence
	Err      error

	// stepping is set while an Advance is in flight.
	stepping bool
}

// NewModel returns a model that advances lx every interval.
func NewModel(lx Lexicon, interval time.Duration) Model {
	if interval < minInterval {
		interval = minInterval
	}
	return Model{
		Lexicon:  lx,
		Keys:     DefaultKeyMap(),
		Interval: interval,
		State:    lx.Snapshot(),
		Sentence: sentence.Empty,
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.Interval)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) advanceCmd() tea.Cmd {
	lx := m.Lexicon
	return func() tea.Msg {
		res, err := lx.Advance(context.Background())
		return advancedMsg{res: res, err: err}
	}
}

func (m Model) sentenceCmd() tea.Cmd {
	lx := m.Lexicon
	return func() tea.Msg {
		return sentenceMsg(lx.Sentence())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.Interval)}
		if !m.Paused && !m.stepping {
			m.stepping = true
			cmds = append(cmds, m.advanceCmd())
		}
		return m, tea.Batch(cmds...)

	case advancedMsg:
		m.stepping = false
		m.Err = msg.err
		m.Log = appendLog(m.Log, msg.res.Events)
		m.State = m.Lexicon.Snapshot()
		return m, nil

	case sentenceMsg:
		m.Sentence = sentence.Sentence(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Pause):
		m.Paused = !m.Paused
	case key.Matches(msg, m.Keys.Step):
		if !m.stepping {
			m.stepping = true
			return m, m.advanceCmd()
		}
	case key.Matches(msg, m.Keys.Sentence):
		return m, m.sentenceCmd()
	case key.Matches(msg, m.Keys.Faster):
		m.Interval = max(minInterval, m.Interval/2)
	case key.Matches(msg, m.Keys.Slower):
		m.Interval = min(maxInterval, m.Interval*2)
	}
	return m, nil
}

func appendLog(log, events []lexicon.LoggedEvent) []lexicon.LoggedEvent {
	log = append(log, events...)
	if len(log) > MaxLogLines {
		log = append([]lexicon.LoggedEvent(nil), log[len(log)-MaxLogLines:]...)
	}
	return log
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.wordsView(), " ", m.logView()))
	b.WriteString("\n")
	b.WriteString(m.sentenceView())
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(styleExtinct.Render("error: " + m.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(Footer{Width: m.Width, Bindings: FooterBindings(m.Keys)}.View())
	return b.String()
}

func (m Model) statusView() string {
	s := m.State
	parts := []string{
		styleStatusLabel.Render("LEXIS"),
		fmt.Sprintf("gen %d", s.Generation),
		fmt.Sprintf("%d words", len(s.Words)),
		fmt.Sprintf("%d compounds", len(s.Compounds)),
		fmt.Sprintf("%d extinct", s.Stats.TotalExtinct),
		fmt.Sprintf("every %s", m.Interval),
	}
	if m.Paused {
		parts = append(parts, styleStatusPaused.Render("PAUSED"))
	}
	bar := styleStatusBar
	if m.Width > 0 {
		bar = bar.Width(m.Width)
	}
	return bar.Render(strings.Join(parts, "  "))
}

// fittest returns up to n living forms ordered by fitness, then form.
func fittest(s *lexicon.State, n int) []string {
	forms := s.SortedForms()
	sort.SliceStable(forms, func(i, j int) bool {
		return s.Words[forms[i]].Fitness > s.Words[forms[j]].Fitness
	})
	if len(forms) > n {
		forms = forms[:n]
	}
	return forms
}

func (m Model) wordsView() string {
	lines := []string{stylePanelTitle.Render("fittest words")}
	for _, form := range fittest(m.State, TopWords) {
		w := m.State.Words[form]
		lines = append(lines, fmt.Sprintf("%-10s %s %s",
			form,
			styleNormal.Render(fmt.Sprintf("%-12s", w.Meaning)),
			styleDim.Render(fmt.Sprintf("%.2f", w.Fitness))))
	}
	if len(m.State.Words) == 0 {
		lines = append(lines, styleDim.Render("(none)"))
	}
	return stylePanel.Render(strings.Join(lines, "\n"))
}

func eventStyle(k lexicon.Kind) (string, func(...string) string) {
	switch k {
	case lexicon.KindBirth:
		return "+", styleBirth.Render
	case lexicon.KindExtinct:
		return "✗", styleExtinct.Render
	case lexicon.KindShift:
		return "~", styleShift.Render
	case lexicon.KindCompound:
		return "◆", styleCompound.Render
	default:
		return "·", styleDim.Render
	}
}

func (m Model) logView() string {
	lines := []string{stylePanelTitle.Render("events")}
	for _, ev := range m.Log {
		if ev.Event == nil {
			continue
		}
		icon, render := eventStyle(ev.Event.Kind())
		lines = append(lines, fmt.Sprintf("%s %s %s",
			render(icon),
			styleDim.Render(fmt.Sprintf("g%-4d", ev.Event.Generation())),
			lexicon.Describe(ev.Event)))
	}
	if len(m.Log) == 0 {
		lines = append(lines, styleDim.Render("(waiting)"))
	}
	return stylePanel.Render(strings.Join(lines, "\n"))
}

func (m Model) sentenceView() string {
	if len(m.Sentence.Words) == 0 {
		return styleDim.Render("press s for a sentence")
	}
	return styleSentence.Render(m.Sentence.Text) + "\n" + styleDim.Render(m.Sentence.Gloss)
}
