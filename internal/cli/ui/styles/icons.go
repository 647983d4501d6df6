package styles

// Icons used across command output. Plain Unicode rather than Nerd Font
// glyphs: proxy hosts are plain SSH sessions, not customized terminals.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconPending = "…"

	IconBullet     = "▸"
	IconDot        = "●"
	IconDotEmpty   = "○"
	IconArrowRight = "→"

	BorderHorizontal = "─"
)
