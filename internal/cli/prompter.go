package cli

// Prompter asks the user questions on the terminal. Implementations wrap
// cancellation in ErrPromptCancelled.
type Prompter interface {
	Select(label string, items []string, defaultValue string) (int, string, error)
	Prompt(label string) (string, error)
	Confirm(label string, defaultYes bool) (bool, error)
}
