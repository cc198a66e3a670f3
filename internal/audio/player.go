package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
	"github.com/dooshek/factreader/pkg/wav"
	"github.com/gen2brain/malgo"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	// Decoded files are resampled to 24 kHz mono, the rate the realtime API streams at
	SampleRate = 24000
	Channels   = 1

	drainDelay = 150 * time.Millisecond
)

// ErrNoPlayer is returned when no playback backend could play the audio
var ErrNoPlayer = errors.New("no suitable audio player found")

func init() {
	ffmpeg.LogCompiledCommand = false
}

// Player plays synthesised speech
type Player interface {
	// PlayFile plays an encoded audio file (mp3, opus, wav, ...) to completion
	PlayFile(ctx context.Context, path string) error

	// PlayPCM plays raw 16-bit little endian PCM to completion
	PlayPCM(ctx context.Context, pcm []byte, sampleRate, channels int) error
}

// NewPlayer returns the player for kind: "native", "external" or "auto"
func NewPlayer(kind string) (Player, error) {
	switch kind {
	case types.PlayerNative:
		return &NativePlayer{}, nil
	case types.PlayerExternal:
		return NewExternalPlayer(), nil
	case types.PlayerAuto, "":
		return &FallbackPlayer{Players: []Player{&NativePlayer{}, NewExternalPlayer()}}, nil
	default:
		return nil, fmt.Errorf("unsupported audio player: %s (supported: auto, native, external)", kind)
	}
}

// NativePlayer decodes audio with ffmpeg and plays it through a miniaudio playback device
type NativePlayer struct{}

func (p *NativePlayer) PlayFile(ctx context.Context, path string) error {
	pcm, err := DecodeToPCM(path, SampleRate, Channels)
	if err != nil {
		return err
	}
	return p.PlayPCM(ctx, pcm, SampleRate, Channels)
}

func (p *NativePlayer) PlayPCM(ctx context.Context, pcm []byte, sampleRate, channels int) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	reader := bytes.NewReader(pcm)
	done := make(chan struct{})
	var once sync.Once

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputBuffer, _ []byte, _ uint32) {
			n, _ := io.ReadFull(reader, outputBuffer)
			if n < len(outputBuffer) {
				clear(outputBuffer[n:])
				once.Do(func() { close(done) })
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	logger.Debugf("🔊 Playing %d bytes of PCM at %d Hz", len(pcm), sampleRate)

	select {
	case <-done:
		// Let the device drain the last period
		time.Sleep(drainDelay)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DecodeToPCM converts an audio file to raw 16-bit PCM with ffmpeg
func DecodeToPCM(path string, sampleRate, channels int) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	err := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"loglevel": "error",
			"f":        "s16le",
			"acodec":   "pcm_s16le",
			"ar":       fmt.Sprint(sampleRate),
			"ac":       fmt.Sprint(channels),
		}).
		WithOutput(&stdout, &stderr).
		Run()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w (%s)", filepath.Base(path), err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// ExternalPlayer plays audio with the first system player that succeeds
type ExternalPlayer struct {
	// Commands are tried in order, the file path is appended as the last argument
	Commands [][]string
}

// NewExternalPlayer returns an ExternalPlayer with the usual Linux and macOS players
func NewExternalPlayer() *ExternalPlayer {
	return &ExternalPlayer{Commands: [][]string{
		{"paplay"},
		{"mpv", "--no-video", "--really-quiet"},
		{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
		{"mpg123", "-q"},
		{"afplay"},
	}}
}

func (p *ExternalPlayer) PlayFile(ctx context.Context, path string) error {
	var tried []string
	for _, command := range p.Commands {
		if _, err := exec.LookPath(command[0]); err != nil {
			continue
		}
		tried = append(tried, command[0])

		args := append(append([]string{}, command[1:]...), path)
		if err := exec.CommandContext(ctx, command[0], args...).Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debugf("%s failed, trying next player: %v", command[0], err)
			continue
		}

		logger.Debugf("✅ Audio played using %s", command[0])
		return nil
	}

	return fmt.Errorf("%w (tried: %v)", ErrNoPlayer, tried)
}

func (p *ExternalPlayer) PlayPCM(ctx context.Context, pcm []byte, sampleRate, channels int) error {
	data, err := wav.ConvertPCMToWAV(pcm, channels, sampleRate)
	if err != nil {
		return fmt.Errorf("failed to build wav: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "factreader_*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	tmpFile.Close()

	return p.PlayFile(ctx, tmpFile.Name())
}

// FallbackPlayer tries each player in turn until one succeeds
type FallbackPlayer struct {
	Players []Player
}

func (p *FallbackPlayer) PlayFile(ctx context.Context, path string) error {
	return p.try(ctx, func(player Player) error { return player.PlayFile(ctx, path) })
}

func (p *FallbackPlayer) PlayPCM(ctx context.Context, pcm []byte, sampleRate, channels int) error {
	return p.try(ctx, func(player Player) error { return player.PlayPCM(ctx, pcm, sampleRate, channels) })
}

func (p *FallbackPlayer) try(ctx context.Context, play func(Player) error) error {
	var errs []error
	for _, player := range p.Players {
		err := play(player)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debugf("Player %T failed: %v", player, err)
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrNoPlayer, errors.Join(errs...))
}
