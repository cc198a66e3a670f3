package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/dooshek/factreader/internal/facts"
	"github.com/dooshek/factreader/internal/keyboard"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/notification"
	"github.com/dooshek/factreader/internal/tts"
	"github.com/dooshek/factreader/internal/types"
)

// Speaker speaks a sentence to completion
type Speaker interface {
	Speak(ctx context.Context, text string) error
	GetProviderName() string
}

// Sampler draws facts from a file
type Sampler interface {
	SampleFile(path string, count int) ([]string, error)
}

// StatsRecorder records finished sessions
type StatsRecorder interface {
	RecordSession(provider string, facts int) error
}

// Options control a single reading session
type Options struct {
	Path            string
	Count           int // 0 asks the user
	CopyToClipboard bool
	Notify          bool
	Phrases         types.Phrases
}

// Session reads random facts aloud
type Session struct {
	speaker   Speaker
	prompt    keyboard.CountPrompt
	sampler   Sampler
	notifier  notification.Notifier
	stats     StatsRecorder
	copyFacts func([]string) error
	opts      Options
}

// Deps are the collaborators of a Session. Stats and CopyFacts are optional.
type Deps struct {
	Speaker   Speaker
	Prompt    keyboard.CountPrompt
	Sampler   Sampler
	Notifier  notification.Notifier
	Stats     StatsRecorder
	CopyFacts func([]string) error
}

func New(deps Deps, opts Options) *Session {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notification.NewSilent()
	}
	return &Session{
		speaker:   deps.Speaker,
		prompt:    deps.Prompt,
		sampler:   deps.Sampler,
		notifier:  notifier,
		stats:     deps.Stats,
		copyFacts: deps.CopyFacts,
		opts:      opts,
	}
}

// Run greets the user, asks for a count, speaks that many random facts and
// says goodbye. It returns the facts that were spoken.
func (s *Session) Run(ctx context.Context) ([]string, error) {
	phrases := s.opts.Phrases

	if err := s.speak(ctx, phrases.Greeting); err != nil {
		return nil, err
	}

	count, err := s.count(ctx)
	if err != nil {
		if errors.Is(err, keyboard.ErrSelectionCancelled) {
			logger.Info("Selection cancelled")
			if speakErr := s.speak(ctx, phrases.Farewell); speakErr != nil {
				return nil, errors.Join(err, speakErr)
			}
		}
		return nil, err
	}

	selected, err := s.sampler.SampleFile(s.opts.Path, count)
	if err != nil {
		if phrase, ok := errorPhrase(phrases, err); ok {
			logger.Warnf("Cannot read facts from %s: %v", s.opts.Path, err)
			if speakErr := s.speak(ctx, phrase); speakErr != nil {
				return nil, errors.Join(err, speakErr)
			}
		}
		return nil, err
	}

	for i, fact := range selected {
		logger.Debugf("Fact %d/%d: %s", i+1, len(selected), fact)
		if err := s.speak(ctx, fact); err != nil {
			return selected[:i], err
		}
	}

	if err := s.speak(ctx, phrases.Farewell); err != nil {
		return selected, err
	}

	s.finish(selected)
	return selected, nil
}

func (s *Session) count(ctx context.Context) (int, error) {
	if s.opts.Count > 0 {
		return s.opts.Count, nil
	}
	if s.prompt == nil {
		return 0, fmt.Errorf("no input backend configured")
	}
	return s.prompt.ReadCount(ctx)
}

// speak plays the fallback sound when speech synthesis is unavailable
func (s *Session) speak(ctx context.Context, text string) error {
	err := s.speaker.Speak(ctx, text)
	if err == nil {
		return nil
	}
	if errors.Is(err, tts.ErrSynthesisUnavailable) {
		if fallbackErr := s.notifier.PlayFallback(ctx); fallbackErr != nil {
			logger.Error("Failed to play fallback sound", fallbackErr)
		}
	}
	return fmt.Errorf("failed to speak: %w", err)
}

// finish runs the post-session side effects. Their failures are logged only.
func (s *Session) finish(selected []string) {
	provider := s.speaker.GetProviderName()

	if s.stats != nil {
		if err := s.stats.RecordSession(provider, len(selected)); err != nil {
			logger.Warnf("Failed to record stats: %v", err)
		}
	}

	if s.opts.CopyToClipboard && s.copyFacts != nil {
		if err := s.copyFacts(selected); err != nil {
			logger.Warnf("Failed to copy facts to clipboard: %v", err)
		}
	}

	if s.opts.Notify {
		message := fmt.Sprintf("Read %d fact(s) with %s", len(selected), provider)
		if err := s.notifier.Notify("factreader", message); err != nil {
			logger.Warnf("Failed to send notification: %v", err)
		}
	}
}

// errorPhrase returns the sentence spoken for a sampling failure
func errorPhrase(phrases types.Phrases, err error) (string, bool) {
	switch {
	case errors.Is(err, facts.ErrSourceNotFound):
		return phrases.FileNotFound, true
	case errors.Is(err, facts.ErrEmptySource):
		return phrases.EmptyFile, true
	case errors.Is(err, facts.ErrInsufficientData):
		return phrases.NotEnoughFacts, true
	default:
		return "", false
	}
}
