package idaia

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the
// panel automatically matches any color scheme.
type Theme struct {
	Prompt  int // user prompt accent
	Error   int // error messages
	Success int // created-object confirmations
	Muted   int // status bar, placeholders
	Accent  int // headings, explanation emphasis
	CodeBg  int // code block background
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Prompt:  4,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
		CodeBg:  0,
	}
}
