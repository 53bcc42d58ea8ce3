package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

// Mode represents what the user wants to do next in an interactive session
type Mode int

const (
	ModeDescribe Mode = iota
	ModeSimilar
	ModeQuit
)

const (
	optDescribe = "Describe what I'm looking for"
	optSimilar  = "Find items similar to one I like"
	optQuit     = "Quit"
)

// PromptCatalogPath asks for a catalog file until load accepts one.
// An empty answer selects the embedded sample catalog.
func PromptCatalogPath(load func(path string) error) (string, error) {
	for {
		var path string
		prompt := &survey.Input{
			Message: "Catalog file (JSON, YAML or SQLite, empty for the sample catalog):",
		}
		if err := survey.AskOne(prompt, &path); err != nil {
			return "", err
		}

		path = strings.TrimSpace(path)
		if err := load(path); err != nil {
			ShowError(fmt.Sprintf("Could not load catalog: %v", err))
			continue
		}
		return path, nil
	}
}

// SelectMode asks what kind of query to run
func SelectMode() (Mode, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: []string{optDescribe, optSimilar, optQuit},
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return ModeQuit, err
	}

	switch choice {
	case optDescribe:
		return ModeDescribe, nil
	case optSimilar:
		return ModeSimilar, nil
	default:
		return ModeQuit, nil
	}
}

// PromptTags asks for a comma-separated tag list, completing from known tags
func PromptTags(known []string) (string, error) {
	var tags string
	prompt := &survey.Input{
		Message: fmt.Sprintf("Tags to require (comma separated, %s for no filter):", recommend.NoTagFilter),
		Default: recommend.NoTagFilter,
		Suggest: SuggestTags(known),
	}

	if err := survey.AskOne(prompt, &tags); err != nil {
		return "", err
	}
	return tags, nil
}

// PromptDescription asks for a free-text description of what the user wants
func PromptDescription() (string, error) {
	var text string
	prompt := &survey.Input{
		Message: "Describe what you're looking for:",
	}

	if err := survey.AskOne(prompt, &text, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return text, nil
}

// PromptItemName asks for the name of a catalog item, completing from names
func PromptItemName(names []string) (string, error) {
	var name string
	prompt := &survey.Input{
		Message: "Name of an item you like:",
		Suggest: SuggestNames(names),
	}

	if err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// SelectProvider prompts the user to select an embedding provider
func SelectProvider(options []string, current string) (string, error) {
	var provider string
	prompt := &survey.Select{
		Message: "Select an embedding provider:",
		Options: options,
		Default: current,
		Description: func(value string, index int) string {
			switch value {
			case "tfidf":
				return "offline, built from the catalog"
			case "ollama":
				return "local Ollama server"
			case "openai":
				return "OpenAI-compatible API, needs a key"
			}
			return ""
		},
	}

	if err := survey.AskOne(prompt, &provider); err != nil {
		return "", err
	}
	return provider, nil
}

// PromptInput asks for a single line with a default value
func PromptInput(message, def string) (string, error) {
	var value string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &value); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// PromptSecret asks for a value without echoing it
func PromptSecret(message string) (string, error) {
	var value string
	if err := survey.AskOne(&survey.Password{Message: message}, &value); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// PromptYesNo asks a yes/no question
func PromptYesNo(message string, def bool) (bool, error) {
	answer := def
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

// SuggestTags completes the last comma-separated token of the input
func SuggestTags(known []string) func(string) []string {
	return func(toComplete string) []string {
		prefix := ""
		partial := toComplete
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
			partial = toComplete[i+1:]
		}
		partial = strings.ToLower(strings.TrimSpace(partial))

		var out []string
		for _, tag := range known {
			if strings.HasPrefix(strings.ToLower(tag), partial) {
				out = append(out, prefix+tag)
			}
		}
		return out
	}
}

// SuggestNames completes item names by case-insensitive substring
func SuggestNames(names []string) func(string) []string {
	return func(toComplete string) []string {
		needle := strings.ToLower(strings.TrimSpace(toComplete))
		var out []string
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), needle) {
				out = append(out, name)
			}
		}
		return out
	}
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowSection prints a bold heading
func ShowSection(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", title)
}
