package core

import "context"

type (
	// TextResult is the raw outcome reported by a generative text provider.
	TextResult struct {
		Success      bool
		Text         string
		ErrorMessage string
	}

	// TextGenerator is any service that can produce free text from a prompt,
	// on behalf of a user, within a host security context.
	TextGenerator interface {
		GenerateText(ctx context.Context, prompt string, contextID, userID int) (TextResult, error)
	}
)
