package ideas

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Title   int // Header title
	Tagline int // Header tagline
	Accent  int // Headings, links, spinner
	Error   int // Stream errors, auth required
	Success int // Completion indicator
	Warning int // Paywall prompt
	Muted   int // Status bar, placeholders, blockquotes
	CodeBg  int // Code block background
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Title:   5,
		Tagline: 8,
		Accent:  5,
		Error:   1,
		Success: 2,
		Warning: 3,
		Muted:   8,
		CodeBg:  0,
	}
}
