package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan: primary accent
	colorAccent     = lipgloss.Color("#FFD700") // Gold: compounds
	colorSuccess    = lipgloss.Color("#00E676") // Green: births
	colorDanger     = lipgloss.Color("#FF5252") // Red: extinctions
	colorMuted      = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorWhite      = lipgloss.Color("#EEEEEE") // Off-white: primary text
	colorSurface    = lipgloss.Color("#1E1E2E") // Dark surface: status bar bg
	colorSurfaceDim = lipgloss.Color("#181825") // Darkest surface: footer bg
	colorBlue       = lipgloss.Color("#5B8DEF") // Blue: sound shifts
)

// CompactWidth is the terminal width below which the footer drops
// descriptions.
const CompactWidth = 70

// Status bar styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleStatusLabel = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleStatusPaused = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)
)

// Event row styles, keyed by kind in eventStyle.
var (
	styleBirth    = lipgloss.NewStyle().Foreground(colorSuccess)
	styleExtinct  = lipgloss.NewStyle().Foreground(colorDanger)
	styleShift    = lipgloss.NewStyle().Foreground(colorBlue)
	styleCompound = lipgloss.NewStyle().Foreground(colorAccent)
	styleDim      = lipgloss.NewStyle().Foreground(colorMuted)
	styleNormal   = lipgloss.NewStyle().Foreground(colorMutedLight)
)

// Panel styles.
var (
	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	stylePanelTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleSentence = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)
)

// Footer styles.
var (
	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurfaceDim).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorMuted)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)
