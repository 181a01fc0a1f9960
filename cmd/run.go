package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/app"
	"github.com/abhisek/puzzlealarm/internal/notify"
	"github.com/abhisek/puzzlealarm/internal/ringer"
	"github.com/abhisek/puzzlealarm/internal/schedule"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI. A
// non-zero ringID fires that alarm as soon as the TUI is up.
func runApp(cmd *cobra.Command, ringID int) error {
	ctx := cmd.Context()
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := ringer.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: sound player not usable:", err)
		cfg.Player = ""
	}

	eventRepo := st.EventRepo()
	alarmRepo := st.AlarmRepo()
	bus := notify.NewBus()

	platform := schedule.NewTimerPlatform(nil)
	defer platform.Stop()
	platform.SetExactAllowed(exactAlarmsAllowed(ctx, st.Preferences()))

	scheduler := schedule.New(platform, schedule.Options{
		Events:  eventRepo,
		Notices: bus,
		RequestPermission: func() {
			notify.Info(bus, "Run `puzzlealarm permission grant` to allow alarms")
		},
	})

	svc := alarm.NewService(alarmRepo, scheduler, bus)
	svc.Load(ctx)

	if ringID != 0 {
		if _, ok := svc.Get(ringID); !ok {
			return fmt.Errorf("ring alarm %d: %w", ringID, alarm.ErrNotFound)
		}
	}

	opts := app.Options{
		Service:  svc,
		Alarms:   alarmRepo,
		Events:   eventRepo,
		Platform: platform,
		Notices:  bus,
		Ringer:   cfg,
		RingID:   ringID,
		Restore:  func() { svc.Restore(ctx) },
	}
	return app.Run(opts)
}
