package ringer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrNoSound is returned when neither the requested ringtone nor the
// default sound can be played.
var ErrNoSound = errors.New("no playable sound")

// Playback is a running sound or vibration. Stop must be safe to call more
// than once.
type Playback interface {
	Stop()
}

// Player starts looping playback of a sound reference. An empty ref means
// the default sound.
type Player interface {
	Start(ref string) (Playback, error)
}

// loop runs fn repeatedly on its own goroutine until stopped.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startLoop(fn func(ctx context.Context)) *loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		for ctx.Err() == nil {
			fn(ctx)
		}
	}()
	return l
}

// Stop cancels the loop and waits for the current iteration to finish.
func (l *loop) Stop() {
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ExecPlayer loops an external audio command over a sound file.
type ExecPlayer struct {
	Command      string
	Args         []string
	DefaultSound string
	Gap          time.Duration
}

// NewExecPlayer creates a player from a resolved Config.
func NewExecPlayer(cfg Config) *ExecPlayer {
	return &ExecPlayer{
		Command:      cfg.Player,
		Args:         cfg.PlayerArgs,
		DefaultSound: cfg.DefaultSound,
		Gap:          cfg.LoopGap,
	}
}

func (p *ExecPlayer) Start(ref string) (Playback, error) {
	if p.Command == "" {
		return nil, fmt.Errorf("start playback: no audio command configured")
	}
	path, err := p.resolve(ref)
	if err != nil {
		return nil, err
	}

	args := append(append([]string{}, p.Args...), path)
	return startLoop(func(ctx context.Context) {
		cmd := exec.CommandContext(ctx, p.Command, args...)
		if err := cmd.Run(); err != nil && ctx.Err() == nil {
			// A player that fails immediately would otherwise spin.
			sleep(ctx, time.Second)
		}
		sleep(ctx, p.Gap)
	}), nil
}

// resolve picks the file to play: the ringtone when it exists, otherwise
// the default sound.
func (p *ExecPlayer) resolve(ref string) (string, error) {
	if path := SoundPath(ref); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		fmt.Fprintf(os.Stderr, "warning: ringtone %q not found, using default sound\n", ref)
	}
	if p.DefaultSound == "" {
		return "", ErrNoSound
	}
	if _, err := os.Stat(p.DefaultSound); err != nil {
		return "", fmt.Errorf("default sound: %w", ErrNoSound)
	}
	return p.DefaultSound, nil
}

// SoundPath converts a ringtone reference to a file path. file:// URIs are
// stripped to their path.
func SoundPath(ref string) string {
	ref = strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(ref, "file://"); ok {
		return rest
	}
	return ref
}

// BellPlayer rings the terminal bell until stopped. It ignores the sound
// reference and never fails.
type BellPlayer struct {
	Out      io.Writer
	Interval time.Duration
}

func (b *BellPlayer) Start(string) (Playback, error) {
	out := b.Out
	if out == nil {
		out = os.Stderr
	}
	interval := b.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return startLoop(func(ctx context.Context) {
		_, _ = io.WriteString(out, "\a")
		sleep(ctx, interval)
	}), nil
}

// FirstOf returns a Player that starts the first player that succeeds.
func FirstOf(players ...Player) Player {
	return firstOf(players)
}

type firstOf []Player

func (f firstOf) Start(ref string) (Playback, error) {
	var errs []error
	for _, p := range f {
		pb, err := p.Start(ref)
		if err == nil {
			return pb, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoSound
	}
	return nil, errors.Join(errs...)
}
