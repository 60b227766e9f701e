package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/smarthub/internal/logger"
)

// Player handles audio playback of WAV/PCM data via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// Compile-time interface check.
var _ AudioPlayer = (*Player)(nil)

// NewPlayer initializes the system audio context. It fails when no audio
// device is available.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("player: audio context: %w", err)
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays WAV audio and blocks until it finishes, Stop is called or
// ctx is cancelled. A cancelled ctx never starts playback.
func (p *Player) Play(ctx context.Context, wavData []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pcm, err := extractPCM(wavData)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	// Stop may have run between the first check and registration.
	if err := ctx.Err(); err != nil {
		p.mu.Lock()
		p.active = nil
		p.mu.Unlock()
		player.Close()
		return err
	}

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
wait:
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			break wait
		case <-tick.C:
		}
	}

	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the current playback, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("player: wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("player: not a valid WAV file")
	}

	// Walk chunks to find "data"; chunks are word-aligned.
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("player: data chunk not found in WAV")
}
