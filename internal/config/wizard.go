package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dooshek/factreader/internal/fileops"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
	"github.com/fatih/color"
)

// RunWizard asks for the basic settings on the terminal and saves them
func RunWizard() error {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return fmt.Errorf("failed to initialize file operations: %w", err)
	}
	return RunWizardWith(os.Stdin, os.Stdout, fileOps)
}

// RunWizardWith runs the wizard reading answers from in and writing prompts to out
func RunWizardWith(in io.Reader, out io.Writer, fileOps fileops.FileOps) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	bold.Fprintln(out, "\n📚 Welcome to Fact Reader Configuration Wizard!")
	fmt.Fprintln(out, "\nPress Enter to keep the value shown in brackets.")

	existing, err := Load(fileOps)
	if err != nil {
		logger.Warnf("Ignoring unreadable config: %v", err)
	}
	if existing == nil {
		existing = &types.Config{}
	}
	facts := existing.GetFactsConfig()
	speech := existing.GetSpeechConfig()
	input := existing.GetInputConfig()

	reader := bufio.NewReader(in)
	ask := func(question, current string) (string, error) {
		cyan.Fprintf(out, "\n%s [%s]: ", question, current)
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		answer = cleanAnswer(answer)
		if answer == "" {
			return current, nil
		}
		return answer, nil
	}

	config := &types.Config{}

	if config.Facts.Path, err = ask("Fact file", facts.Path); err != nil {
		return err
	}

	provider, err := ask("Speech provider (google|openai|realtime|console)", speech.Provider)
	if err != nil {
		return err
	}
	switch provider {
	case types.ProviderGoogle, types.ProviderOpenAI, types.ProviderRealtime, types.ProviderConsole:
		config.Speech.Provider = provider
	default:
		return fmt.Errorf("unsupported speech provider: %s", provider)
	}

	if config.Speech.Language, err = ask("Language (BCP-47 code)", speech.Language); err != nil {
		return err
	}
	if provider == types.ProviderGoogle {
		if config.Speech.AccentDomain, err = ask("Accent domain (com, ca, co.uk, com.au, ...)", speech.AccentDomain); err != nil {
			return err
		}
	}

	if provider == types.ProviderOpenAI || provider == types.ProviderRealtime {
		current := existing.Keys.OpenAIKey
		if current != "" {
			current = "********"
		}
		key, err := ask("OpenAI API key", current)
		if err != nil {
			return err
		}
		if key != "********" {
			config.Keys.OpenAIKey = key
		}
	}

	backend, err := ask("Input (stdin|evdev|auto)", input.Backend)
	if err != nil {
		return err
	}
	switch backend {
	case types.InputStdin, types.InputEvdev, types.InputAuto:
		config.Input.Backend = backend
	default:
		return fmt.Errorf("unsupported input backend: %s", backend)
	}

	if err := Save(fileOps, config); err != nil {
		logger.Error("Failed to save configuration", err)
		return err
	}

	green.Fprintf(out, "\n✅ Configuration saved to %s\n", fileOps.GetConfigDir())
	return nil
}

// cleanAnswer trims the answer and drops control characters left by terminals
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
