package parley

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg      int // User message accent
	AssistantMsg int // Assistant message accent
	Error        int // Error messages
	Muted        int // Status bar, placeholders, timestamps
	CodeBg       int // Code block background
	Accent       int // Headings, links, active history entry
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:      4,
		AssistantMsg: 6,
		Error:        1,
		Muted:        8,
		CodeBg:       0,
		Accent:       5,
	}
}
