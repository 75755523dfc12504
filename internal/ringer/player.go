package ringer

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

var ErrAudioUnavailable = errors.New("ringer: audio output unavailable")

// Player starts looped playback of a tone.
type Player interface {
	Play(t Tone) (Playback, error)
}

// Playback is a running tone. Stop is safe to call more than once.
type Playback interface {
	Stop()
}

type NopPlayer struct{}

func (NopPlayer) Play(Tone) (Playback, error) { return nopPlayback{}, nil }

type nopPlayback struct{}

func (nopPlayback) Stop() {}

// OtoPlayer plays tones through the default audio device. The device is
// opened once, with the format of the first tone played; later tones must
// share that format.
type OtoPlayer struct {
	logger *zap.Logger

	once   sync.Once
	ctx    *oto.Context
	format Format
	err    error
}

func NewOtoPlayer(logger *zap.Logger) *OtoPlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OtoPlayer{logger: logger}
}

func (p *OtoPlayer) Play(t Tone) (Playback, error) {
	p.once.Do(func() { p.open(t.Format) })
	if p.err != nil {
		return nil, p.err
	}
	if t.Format != p.format {
		return nil, fmt.Errorf("%w: device opened at %d Hz/%d ch, tone is %d Hz/%d ch",
			ErrUnsupportedTone, p.format.SampleRate, p.format.Channels, t.Format.SampleRate, t.Format.Channels)
	}

	pb := &loopPlayback{stopCh: make(chan struct{}), logger: p.logger}
	go pb.loop(p.ctx, t.PCM)
	return pb, nil
}

func (p *OtoPlayer) open(format Format) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		p.err = fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
		p.logger.Error("audio context init failed", zap.Error(err))
		return
	}
	<-ready
	p.ctx = ctx
	p.format = format
	p.logger.Info("audio context ready", zap.Int("sample_rate", format.SampleRate), zap.Int("channels", format.Channels))
}

type loopPlayback struct {
	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
	current *oto.Player
	logger  *zap.Logger
}

func (pb *loopPlayback) loop(ctx *oto.Context, pcm []byte) {
	for {
		player := ctx.NewPlayer(bytes.NewReader(pcm))
		pb.mu.Lock()
		if pb.stopped {
			pb.mu.Unlock()
			_ = player.Close()
			return
		}
		pb.current = player
		pb.mu.Unlock()

		player.Play()
		for player.IsPlaying() {
			select {
			case <-pb.stopCh:
				player.Pause()
				_ = player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		if err := player.Close(); err != nil {
			pb.logger.Warn("audio player close failed", zap.Error(err))
		}

		select {
		case <-pb.stopCh:
			return
		default:
		}
	}
}

func (pb *loopPlayback) Stop() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.stopped {
		return
	}
	pb.stopped = true
	close(pb.stopCh)
	if pb.current != nil {
		pb.current.Pause()
	}
}
