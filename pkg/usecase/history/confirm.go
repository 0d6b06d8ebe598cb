package history

import "context"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

var (
	// Always approves without asking. Use it when the caller already has
	// explicit consent, such as a --yes flag.
	Always Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

	// Never declines without asking.
	Never Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
)
