// Package gemini implements [idaia.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between the
// pipeline's conversation turns and the Gemini content types.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 1024
)
