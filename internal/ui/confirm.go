package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the operator declines a confirmation.
var ErrAborted = errors.New("aborted by user")

// ErrNotInteractive is returned when confirmation is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (pass --yes)")

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// HuhConfirmer prompts with a huh confirm form.
type HuhConfirmer struct{}

// Confirm implements Confirmer.
func (HuhConfirmer) Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, destroy").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

// RequireConfirmation returns nil when the action may proceed. assumeYes skips
// the prompt; otherwise interactive must be true and the operator must accept.
func RequireConfirmation(ctx context.Context, c Confirmer, assumeYes, interactive bool, title, description string) error {
	if assumeYes {
		return nil
	}
	if !interactive {
		return ErrNotInteractive
	}
	ok, err := c.Confirm(ctx, title, description)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}
