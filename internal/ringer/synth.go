package ringer

import (
	"encoding/binary"
	"math"
	"time"
)

var defaultFormat = Format{SampleRate: 44100, Channels: 1, BitDepth: 16}

type beep struct {
	freq  float64
	tone  time.Duration
	pause time.Duration
}

// alarmPattern is one loop of the built-in alarm: two-tone beeps.
var alarmPattern = []beep{
	{freq: 880, tone: 150 * time.Millisecond, pause: 60 * time.Millisecond},
	{freq: 660, tone: 150 * time.Millisecond, pause: 60 * time.Millisecond},
	{freq: 880, tone: 150 * time.Millisecond, pause: 60 * time.Millisecond},
	{freq: 660, tone: 150 * time.Millisecond, pause: 370 * time.Millisecond},
}

var notificationPattern = []beep{
	{freq: 1000, tone: 120 * time.Millisecond, pause: 600 * time.Millisecond},
}

func defaultAlarmWAV() ([]byte, error) {
	return encodeWAV(defaultFormat, synthesize(defaultFormat.SampleRate, alarmPattern)), nil
}

func defaultNotificationWAV() ([]byte, error) {
	return encodeWAV(defaultFormat, synthesize(defaultFormat.SampleRate, notificationPattern)), nil
}

// synthesize renders mono 16-bit sine beeps with a short linear fade at both
// ends of every beep so the loop does not click.
func synthesize(sampleRate int, pattern []beep) []byte {
	const amplitude = 0.6 * math.MaxInt16
	fade := sampleRate / 200

	var total int
	for _, b := range pattern {
		total += samples(sampleRate, b.tone) + samples(sampleRate, b.pause)
	}
	out := make([]byte, 0, total*2)
	var sample [2]byte
	for _, b := range pattern {
		n := samples(sampleRate, b.tone)
		for i := 0; i < n; i++ {
			gain := 1.0
			if i < fade {
				gain = float64(i) / float64(fade)
			} else if n-i < fade {
				gain = float64(n-i) / float64(fade)
			}
			v := amplitude * gain * math.Sin(2*math.Pi*b.freq*float64(i)/float64(sampleRate))
			binary.LittleEndian.PutUint16(sample[:], uint16(int16(v)))
			out = append(out, sample[:]...)
		}
		out = append(out, make([]byte, samples(sampleRate, b.pause)*2)...)
	}
	return out
}

func samples(sampleRate int, d time.Duration) int {
	return int(int64(sampleRate) * int64(d) / int64(time.Second))
}
