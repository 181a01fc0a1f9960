package ringer

import (
	"fmt"
	"io"
	"sync"
)

// Controller owns the process's single alarm sound and single vibration.
// Starting either tears down the previous one first.
type Controller struct {
	mu        sync.Mutex
	player    Player
	vibrator  Vibrator
	sound     Playback
	vibration Playback
}

// NewController creates a controller. A nil vibrator disables vibration.
func NewController(player Player, vibrator Vibrator) *Controller {
	return &Controller{player: player, vibrator: vibrator}
}

// NewFromConfig builds a controller that plays through an audio command
// when one is available and falls back to the terminal bell. pulse
// receives the vibration state.
func NewFromConfig(cfg Config, bell io.Writer, pulse func(on bool)) *Controller {
	bellPlayer := &BellPlayer{Out: bell, Interval: cfg.BellInterval}

	var player Player = bellPlayer
	if resolved, ok := cfg.Resolve(); ok {
		player = FirstOf(NewExecPlayer(resolved), bellPlayer)
	}
	return NewController(player, &PulseVibrator{Pulse: pulse})
}

// Play stops any active sound and vibration, then starts looping ref. A
// nil or empty ref plays the default sound.
func (c *Controller) Play(ref *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if c.player == nil {
		return fmt.Errorf("play sound: %w", ErrNoSound)
	}
	var r string
	if ref != nil {
		r = *ref
	}
	pb, err := c.player.Start(r)
	if err != nil {
		return fmt.Errorf("play sound: %w", err)
	}
	c.sound = pb
	return nil
}

// StartVibration replaces any active vibration with w.
func (c *Controller) StartVibration(w Waveform) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vibration != nil {
		c.vibration.Stop()
		c.vibration = nil
	}
	if c.vibrator == nil {
		return nil
	}
	pb, err := c.vibrator.Vibrate(w)
	if err != nil {
		return fmt.Errorf("start vibration: %w", err)
	}
	c.vibration = pb
	return nil
}

// Stop releases the sound and the vibration. Safe to call when nothing is
// active.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	sound, vib := c.sound, c.vibration
	c.sound, c.vibration = nil, nil
	if sound != nil {
		sound.Stop()
	}
	if vib != nil {
		vib.Stop()
	}
}

// Active reports whether a sound and a vibration are running.
func (c *Controller) Active() (sound, vibration bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sound != nil, c.vibration != nil
}
