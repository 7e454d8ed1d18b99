package cli

import "errors"

// ErrPromptCancelled indicates that the user aborted an interactive prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

var errNotInteractive = errors.New("the setup wizard needs an interactive terminal")
