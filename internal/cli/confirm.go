package cli

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
)

// repairConfirmer answers the engine's pending-repair question through the
// Prompter. Without a terminal the repair is left to run.
type repairConfirmer struct {
	prompter    Prompter
	interactive func() bool
}

func (r repairConfirmer) Confirm(label string, defaultYes bool) (bool, error) {
	if r.prompter == nil || (r.interactive != nil && !r.interactive()) {
		return false, nil
	}
	ok, err := r.prompter.Confirm(label, defaultYes)
	if errors.Is(err, ErrPromptCancelled) {
		return false, fmt.Errorf("%w: %v", domain.ErrUserCancelled, err)
	}
	return ok, err
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
