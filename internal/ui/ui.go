// Package ui prints human-readable lexis output for one-shot CLI commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/lexis/internal/catalog"
	"github.com/papapumpkin/lexis/internal/engine"
	"github.com/papapumpkin/lexis/internal/lexicon"
	"github.com/papapumpkin/lexis/internal/sentence"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorAccent  = lipgloss.Color("#FFD700")
	colorBlue    = lipgloss.Color("#5B8DEF")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

var (
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	styleBanner  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Border(lipgloss.DoubleBorder()).BorderForeground(colorPrimary).Padding(0, 2)
	styleSection = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// eventStyles maps each event kind to its icon and color.
var eventStyles = map[lexicon.Kind]struct {
	icon  string
	style lipgloss.Style
}{
	lexicon.KindBirth:    {"+", lipgloss.NewStyle().Foreground(colorSuccess)},
	lexicon.KindExtinct:  {"✗", lipgloss.NewStyle().Foreground(colorDanger)},
	lexicon.KindShift:    {"~", lipgloss.NewStyle().Foreground(colorBlue)},
	lexicon.KindCompound: {"◆", lipgloss.NewStyle().Foreground(colorAccent)},
}

type Printer struct {
	w io.Writer
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Banner() {
	fmt.Fprintln(p.w, styleBanner.Render("LEXIS  "+styleDim.Render("lexicon evolution")))
	fmt.Fprintln(p.w)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", styleError.Render("error: "), msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, styleDim.Render(msg))
}

// Event prints one event line.
func (p *Printer) Event(ev lexicon.LoggedEvent) {
	if ev.Event == nil {
		return
	}
	es, ok := eventStyles[ev.Event.Kind()]
	if !ok {
		es.style = styleDim
		es.icon = "·"
	}
	fmt.Fprintf(p.w, "  %s %s %s\n",
		es.style.Render(es.icon),
		styleDim.Render(fmt.Sprintf("g%-4d", ev.Event.Generation())),
		lexicon.Describe(ev.Event))
}

// Generation prints the outcome of one Advance.
func (p *Printer) Generation(res engine.Result) {
	fmt.Fprintf(p.w, "%s %s\n",
		styleHeader.Render(fmt.Sprintf("── generation %d ──", res.Generation)),
		styleDim.Render(fmt.Sprintf("%d words", res.WordCount)))
	if len(res.Events) == 0 {
		fmt.Fprintln(p.w, styleDim.Render("  (quiet)"))
	}
	for _, ev := range res.Events {
		p.Event(ev)
	}
}

func (p *Printer) Sentence(s sentence.Sentence) {
	if len(s.Words) == 0 {
		p.Info("the lexicon is empty")
		return
	}
	fmt.Fprintln(p.w, styleBold.Render(s.Text))
	fmt.Fprintln(p.w, styleDim.Render(s.Gloss))
}

// History prints the recent-history view, oldest first within each section.
func (p *Printer) History(h lexicon.History) {
	fmt.Fprintln(p.w, styleSection.Render(fmt.Sprintf("events (%d)", len(h.Events))))
	for _, ev := range h.Events {
		p.Event(ev)
	}

	fmt.Fprintln(p.w, styleSection.Render(fmt.Sprintf("extinct (%d)", len(h.Extinct))))
	for _, r := range h.Extinct {
		fmt.Fprintf(p.w, "  %s %s %s\n", r.Word, styleDim.Render("("+r.Meaning+")"),
			styleDim.Render(fmt.Sprintf("g%d–g%d, %d uses", r.Born, r.Died, r.Uses)))
	}

	fmt.Fprintln(p.w, styleSection.Render(fmt.Sprintf("sound shifts (%d)", len(h.SoundShifts))))
	for _, r := range h.SoundShifts {
		fmt.Fprintf(p.w, "  %s → %s %s\n", r.From, r.To, styleDim.Render(fmt.Sprintf("(%s, g%d)", r.Meaning, r.Gen)))
	}

	forms := make([]string, 0, len(h.Compounds))
	for form := range h.Compounds {
		forms = append(forms, form)
	}
	sort.Strings(forms)
	fmt.Fprintln(p.w, styleSection.Render(fmt.Sprintf("compounds (%d)", len(forms))))
	for _, form := range forms {
		c := h.Compounds[form]
		fmt.Fprintf(p.w, "  %s = %s %s\n", form, strings.Join(c.Parts, "+"), styleDim.Render(fmt.Sprintf("%q", c.CompoundMeaning)))
	}
}

// Stats prints the counters and population of s.
func (p *Printer) Stats(s *lexicon.State) {
	rows := [][2]string{
		{"generation", fmt.Sprint(s.Generation)},
		{"words", fmt.Sprint(len(s.Words))},
		{"compounds", fmt.Sprint(len(s.Compounds))},
		{"generated", fmt.Sprint(s.Stats.TotalGenerated)},
		{"extinct", fmt.Sprint(s.Stats.TotalExtinct)},
		{"shifts", fmt.Sprint(s.Stats.TotalShifts)},
	}
	for _, r := range rows {
		fmt.Fprintf(p.w, "  %s %s\n", styleDim.Render(fmt.Sprintf("%-11s", r[0]+":")), r[1])
	}
}

// Catalog prints every concept grouped by category.
func (p *Printer) Catalog(c *catalog.Catalog) {
	for _, cat := range catalog.Categories {
		concepts := c.InCategory(cat)
		if len(concepts) == 0 {
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", styleSection.Render(string(cat)), styleDim.Render(fmt.Sprintf("(%d)", len(concepts))))
		fmt.Fprintf(p.w, "  %s\n", strings.Join(concepts, ", "))
	}
}
