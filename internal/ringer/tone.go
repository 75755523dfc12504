package ringer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

type ToneSource int

const (
	SourceFile ToneSource = iota
	SourceDefaultAlarm
	SourceDefaultNotification
)

func (s ToneSource) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceDefaultAlarm:
		return "default alarm"
	case SourceDefaultNotification:
		return "default notification"
	default:
		return "unknown"
	}
}

type Tone struct {
	Name   string
	Source ToneSource
	Format Format
	PCM    []byte
}

var ErrUnsupportedTone = errors.New("ringer: unsupported tone format")

// Resolver turns an alarm's tone reference into playable audio. It tries the
// configured file, then the default alarm tone, then the default
// notification tone, logging every step that fails.
type Resolver struct {
	readFile     func(string) ([]byte, error)
	alarm        func() ([]byte, error)
	notification func() ([]byte, error)
	logger       *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		readFile:     os.ReadFile,
		alarm:        defaultAlarmWAV,
		notification: defaultNotificationWAV,
		logger:       logger,
	}
}

func (r *Resolver) Resolve(uri *string) (Tone, error) {
	if uri != nil {
		path := strings.TrimPrefix(strings.TrimSpace(*uri), "file://")
		if path != "" {
			tone, err := r.load(path, SourceFile, func() ([]byte, error) { return r.readFile(path) })
			if err == nil {
				return tone, nil
			}
			r.logger.Warn("alarm tone unavailable, using default", zap.String("tone", path), zap.Error(err))
		}
	}

	tone, err := r.load("alarm", SourceDefaultAlarm, r.alarm)
	if err == nil {
		return tone, nil
	}
	r.logger.Warn("default alarm tone unavailable, using notification tone", zap.Error(err))

	tone, err = r.load("notification", SourceDefaultNotification, r.notification)
	if err != nil {
		r.logger.Error("no playable tone", zap.Error(err))
		return Tone{}, err
	}
	return tone, nil
}

func (r *Resolver) load(name string, source ToneSource, read func() ([]byte, error)) (Tone, error) {
	raw, err := read()
	if err != nil {
		return Tone{}, err
	}
	format, pcm, err := parseWAV(raw)
	if err != nil {
		return Tone{}, err
	}
	if format.BitDepth != 16 || format.Channels < 1 || format.Channels > 2 || len(pcm) == 0 {
		return Tone{}, fmt.Errorf("%w: %d-bit %d-channel", ErrUnsupportedTone, format.BitDepth, format.Channels)
	}
	return Tone{Name: name, Source: source, Format: format, PCM: pcm}, nil
}
