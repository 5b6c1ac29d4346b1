package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan: primary accent
	colorSuccess    = lipgloss.Color("#00E676") // Green: schedule healthy
	colorDanger     = lipgloss.Color("#FF5252") // Red: errors
	colorMuted      = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorSurface    = lipgloss.Color("#1E1E2E") // Dark surface: status bar bg
	colorSurfaceDim = lipgloss.Color("#181825") // Darkest surface: footer bg
)

// Status bar styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Padding(0, 1)

	styleStatusTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Background(colorSurface).
				Bold(true)

	styleStatusOK = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Background(colorSurface)

	styleStatusErr = lipgloss.NewStyle().
			Foreground(colorDanger).
			Background(colorSurface).
			Bold(true)

	styleStatusDim = lipgloss.NewStyle().
			Foreground(colorMutedLight).
			Background(colorSurface)
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

// styleErrorPanel frames the last error above a stale schedule.
var styleErrorPanel = lipgloss.NewStyle().
	Foreground(colorDanger).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDanger).
	Padding(0, 1)
