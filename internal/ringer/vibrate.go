package ringer

import (
	"context"
	"errors"
	"time"
)

// Waveform alternates off and on segments, starting with off, and repeats
// from the start.
type Waveform []time.Duration

// DefaultWaveform waits 0ms, vibrates 1s, pauses 1s.
var DefaultWaveform = Waveform{0, time.Second, time.Second}

var ErrEmptyWaveform = errors.New("waveform has no duration")

// Validate rejects waveforms that would repeat without ever waiting.
func (w Waveform) Validate() error {
	var total time.Duration
	for _, d := range w {
		if d < 0 {
			return errors.New("waveform segment is negative")
		}
		total += d
	}
	if total == 0 {
		return ErrEmptyWaveform
	}
	return nil
}

// Vibrator drives a repeating vibration pattern.
type Vibrator interface {
	Vibrate(w Waveform) (Playback, error)
}

// PulseVibrator reports the on/off state of the waveform to Pulse. The
// state is always reset to off when the vibration stops.
type PulseVibrator struct {
	Pulse func(on bool)
}

func (v *PulseVibrator) Vibrate(w Waveform) (Playback, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	pattern := append(Waveform{}, w...)
	pulse := v.Pulse
	if pulse == nil {
		pulse = func(bool) {}
	}

	on := false
	l := startLoop(func(ctx context.Context) {
		for i, d := range pattern {
			if ctx.Err() != nil {
				return
			}
			want := i%2 == 1
			if d > 0 && want != on {
				on = want
				pulse(on)
			}
			sleep(ctx, d)
		}
	})
	return &vibration{loop: l, off: func() {
		if on {
			on = false
			pulse(false)
		}
	}}, nil
}

type vibration struct {
	loop *loop
	off  func()
}

func (v *vibration) Stop() {
	v.loop.Stop()
	v.off()
}
