package wav

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// ConvertPCMToWAV wraps 16-bit little endian PCM samples in a WAV container
func ConvertPCMToWAV(pcmData []byte, channels int, sampleRate int) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(len(pcmData) + 44)

	header := []interface{}{
		[]byte("RIFF"),
		uint32(len(pcmData) + 36),
		[]byte("WAVE"),

		// "fmt " chunk
		[]byte("fmt "),
		uint32(16),
		uint16(1), // PCM
		uint16(channels),
		uint32(sampleRate),
		uint32(sampleRate * channels * 2),
		uint16(channels * 2),
		uint16(16),

		// "data" chunk
		[]byte("data"),
		uint32(len(pcmData)),
	}
	for _, field := range header {
		if err := binary.Write(&buffer, binary.LittleEndian, field); err != nil {
			return nil, err
		}
	}
	buffer.Write(pcmData)

	return buffer.Bytes(), nil
}

// Tone is one segment of a generated signal
type Tone struct {
	Frequency float64 // Hz, 0 for silence
	Duration  time.Duration
}

// GenerateTones renders mono 16-bit PCM for the given tones in sequence.
// Each tone fades in and out over a few milliseconds to avoid clicks.
func GenerateTones(sampleRate int, volume float64, tones ...Tone) []byte {
	var pcm []byte
	for _, tone := range tones {
		samples := int(int64(sampleRate) * int64(tone.Duration) / int64(time.Second))
		fade := sampleRate / 200 // 5 ms
		for i := 0; i < samples; i++ {
			var v float64
			if tone.Frequency > 0 {
				v = math.Sin(2*math.Pi*tone.Frequency*float64(i)/float64(sampleRate)) * volume
				if i < fade {
					v *= float64(i) / float64(fade)
				} else if samples-i < fade {
					v *= float64(samples-i) / float64(fade)
				}
			}
			s := int16(v * math.MaxInt16)
			pcm = append(pcm, byte(s), byte(s>>8))
		}
	}
	return pcm
}
