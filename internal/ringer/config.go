package ringer

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Config holds sound playback settings.
type Config struct {
	// Player is the audio command used to play a sound file. Empty means
	// auto-detect from a list of common players.
	Player string

	// PlayerArgs are passed to Player before the sound file path.
	PlayerArgs []string

	// DefaultSound is played when an alarm has no ringtone or its ringtone
	// cannot be found.
	DefaultSound string

	// LoopGap is the pause between two plays of the sound. Default: 500ms.
	LoopGap time.Duration

	// BellInterval is how often the terminal bell rings when no audio
	// player is available. Default: 1s.
	BellInterval time.Duration
}

// knownPlayers are probed in order by DetectPlayer.
var knownPlayers = []struct {
	name string
	args []string
}{
	{"paplay", nil},
	{"pw-play", nil},
	{"afplay", nil},
	{"aplay", []string{"-q"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{"mpv", []string{"--no-video", "--really-quiet"}},
}

// knownSounds are probed in order when no default sound is configured.
var knownSounds = []string{
	"/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga",
	"/usr/share/sounds/freedesktop/stereo/bell.oga",
	"/System/Library/Sounds/Glass.aiff",
}

// DefaultConfig returns sensible defaults for sound playback.
func DefaultConfig() Config {
	return Config{
		LoopGap:      500 * time.Millisecond,
		BellInterval: time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := strings.Fields(os.Getenv("PUZZLEALARM_PLAYER")); len(p) > 0 {
		cfg.Player = p[0]
		cfg.PlayerArgs = p[1:]
	}
	if s := os.Getenv("PUZZLEALARM_DEFAULT_SOUND"); s != "" {
		cfg.DefaultSound = s
	}

	return cfg
}

// Validate checks that a configured player can be found on PATH.
func (c Config) Validate() error {
	if c.LoopGap < 0 {
		return fmt.Errorf("loop gap must not be negative")
	}
	if c.Player == "" {
		return nil
	}
	if _, err := exec.LookPath(c.Player); err != nil {
		return fmt.Errorf("PUZZLEALARM_PLAYER %q not found: %w", c.Player, err)
	}
	return nil
}

// Resolve fills in the player and default sound from the host when they
// are not configured. It reports whether an audio player is available.
func (c Config) Resolve() (Config, bool) {
	if c.Player == "" {
		if name, args, ok := DetectPlayer(); ok {
			c.Player = name
			c.PlayerArgs = args
		}
	}
	if c.DefaultSound == "" {
		for _, s := range knownSounds {
			if _, err := os.Stat(s); err == nil {
				c.DefaultSound = s
				break
			}
		}
	}
	return c, c.Player != "" && c.DefaultSound != ""
}

// DetectPlayer returns the first known audio command found on PATH.
func DetectPlayer() (name string, args []string, ok bool) {
	for _, p := range knownPlayers {
		if _, err := exec.LookPath(p.name); err == nil {
			return p.name, p.args, true
		}
	}
	return "", nil, false
}
