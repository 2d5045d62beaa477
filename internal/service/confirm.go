package service

import "context"

// PromptKind classifies how alarming a confirmation prompt is.
type PromptKind string

const (
	PromptInfo    PromptKind = "INFO"
	PromptWarning PromptKind = "WARNING"
	PromptDanger  PromptKind = "DANGER"
)

// ConfirmationPrompt is what the acting user is asked before a destructive action.
type ConfirmationPrompt struct {
	Header  string     `json:"header"`
	Kind    PromptKind `json:"kind"`
	Message string     `json:"message"`
}

// Confirmer asks the acting user to confirm a destructive action. A false result
// without error means the user declined.
type Confirmer interface {
	Confirm(ctx context.Context, prompt ConfirmationPrompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt ConfirmationPrompt) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt ConfirmationPrompt) (bool, error) {
	return f(ctx, prompt)
}

// Preconfirmed is a Confirmer whose answer was given ahead of time, such as by a request flag.
type Preconfirmed bool

// Confirm returns the preset answer unless ctx is already done.
func (p Preconfirmed) Confirm(ctx context.Context, _ ConfirmationPrompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(p), nil
}
