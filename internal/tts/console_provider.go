package tts

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ConsoleProvider prints text instead of speaking it
type ConsoleProvider struct {
	out io.Writer
}

// NewConsoleProvider writes to out, or stdout when out is nil
func NewConsoleProvider(out io.Writer) *ConsoleProvider {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleProvider{out: out}
}

func (p *ConsoleProvider) Speak(ctx context.Context, text string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefix := color.New(color.FgCyan, color.Bold).Sprint("🔊")
	_, err := fmt.Fprintf(p.out, "%s %s\n", prefix, text)
	return err
}

func (p *ConsoleProvider) GetAudio(ctx context.Context, text string, opts Options) ([]byte, error) {
	return nil, fmt.Errorf("console provider does not produce audio")
}

func (p *ConsoleProvider) GetProviderName() string {
	return "Console"
}
