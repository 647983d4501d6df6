// Package styles is the shared styling system for dkproxyctl's terminal
// output. The palette leans blue to match the DagKnows console, with the
// usual traffic-light semantics for operation results.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Brand blues
	Blue300 = lipgloss.Color("#7cc4ff")
	Blue400 = lipgloss.Color("#4aa8ff")
	Blue500 = lipgloss.Color("#1e88e5")
	Blue600 = lipgloss.Color("#1565c0")

	// Teal accents
	Teal300 = lipgloss.Color("#5eead4")
	Teal400 = lipgloss.Color("#2dd4bf")
	Teal500 = lipgloss.Color("#14b8a6")

	// Neutrals
	Neutral200 = lipgloss.Color("#e5e5e5")
	Neutral400 = lipgloss.Color("#a3a3a3")
	Neutral500 = lipgloss.Color("#737373")
	Neutral700 = lipgloss.Color("#404040")
	Neutral800 = lipgloss.Color("#262626")
	Neutral900 = lipgloss.Color("#171717")

	// Bright terminal colors for status lines
	BrightGreen  = lipgloss.Color("#22dd77")
	BrightRed    = lipgloss.Color("#ff5555")
	BrightYellow = lipgloss.Color("#f5c542")

	// Semantic colors
	ColorPrimary   = Blue400
	ColorSecondary = Teal400
	ColorSuccess   = BrightGreen
	ColorWarning   = BrightYellow
	ColorError     = BrightRed
	ColorInfo      = Blue300

	// Text colors
	ColorText       = Neutral200
	ColorTextMuted  = Neutral500
	ColorTextBright = lipgloss.Color("#ffffff")

	// Background colors
	ColorBg      = lipgloss.Color("#000000")
	ColorBgMuted = Neutral800

	// Border colors
	ColorBorder = Neutral700
)
