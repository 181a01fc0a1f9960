package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/notify"
	"github.com/abhisek/puzzlealarm/internal/schedule"
	"github.com/abhisek/puzzlealarm/internal/screens/history"
	"github.com/abhisek/puzzlealarm/internal/store"
	"github.com/spf13/cobra"
)

// storedOnly is the scheduler used by the one-shot commands. Wake-ups live
// in the running TUI, which arms every enabled alarm when it starts.
type storedOnly struct{}

func (storedOnly) Schedule(context.Context, alarm.Alarm) error { return nil }
func (storedOnly) Cancel(context.Context, alarm.Alarm)         {}

// withService opens the store and runs fn against a loaded alarm service.
// Notices are printed to stderr.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *alarm.Service) error) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	bus := notify.NewBus()
	unsubscribe := bus.Subscribe(func(n notify.Notice) {
		fmt.Fprintln(os.Stderr, n.Text)
	})
	defer unsubscribe()

	ctx := cmd.Context()
	svc := alarm.NewService(st.AlarmRepo(), storedOnly{}, bus)
	svc.Load(ctx)
	return fn(ctx, svc)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid alarm id %q", arg)
	}
	return id, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all alarms",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(_ context.Context, svc *alarm.Service) error {
			alarms := svc.List()
			if len(alarms) == 0 {
				fmt.Println("No alarms. Add one with: puzzlealarm add --time 07:00")
				return nil
			}

			now := time.Now()
			fmt.Printf("%4s  %-5s  %-3s  %-20s  %-13s  %-16s  %s\n",
				"ID", "Time", "On", "Repeat", "Puzzle", "Next", "Label")
			fmt.Println(strings.Repeat("─", 90))

			for _, a := range alarms {
				on, next := "no", "-"
				if a.Enabled {
					on = "yes"
					next = schedule.NextTrigger(now, a.Hour, a.Minute).Format("Mon Jan 02 15:04")
				}
				fmt.Printf("%4d  %-5s  %-3s  %-20s  %-13s  %-16s  %s\n",
					a.ID, a.TimeString(), on, a.RecurringDaysText(),
					a.Puzzle.DisplayName(), next, a.Label)
			}

			fmt.Printf("\n%d alarms\n", len(alarms))
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an alarm",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := alarmFromFlags(cmd)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *alarm.Service) error {
			added, err := svc.Add(ctx, a)
			if err != nil {
				return err
			}
			fmt.Printf("Added alarm #%d at %s (%s)\n", added.ID, added.TimeString(), added.Puzzle.DisplayName())
			return nil
		})
	},
}

// alarmFromFlags builds an alarm from the add command's flags.
func alarmFromFlags(cmd *cobra.Command) (alarm.Alarm, error) {
	a := alarm.New(0)

	clock, _ := cmd.Flags().GetString("time")
	hour, minute, err := alarm.ParseClock(clock)
	if err != nil {
		return a, err
	}
	a.Hour, a.Minute = hour, minute

	if p, _ := cmd.Flags().GetString("puzzle"); p != "" {
		if a.Puzzle, err = alarm.ParsePuzzleType(p); err != nil {
			return a, err
		}
	}

	a.Label, _ = cmd.Flags().GetString("label")

	days, _ := cmd.Flags().GetStringSlice("days")
	for _, d := range days {
		wd, err := alarm.ParseWeekday(d)
		if err != nil {
			return a, err
		}
		a.RecurringDays |= alarm.NewDaySet(wd)
	}

	if noVibrate, _ := cmd.Flags().GetBool("no-vibrate"); noVibrate {
		a.Vibrate = false
	}

	if ring, _ := cmd.Flags().GetString("ringtone"); ring != "" {
		a.RingtoneURI = &ring
	}
	return a, nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *alarm.Service) error {
			if err := svc.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted alarm #%d\n", id)
			return nil
		})
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable ID",
	Short: "Turn an alarm on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable ID",
	Short: "Turn an alarm off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

func setEnabled(cmd *cobra.Command, arg string, enabled bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, svc *alarm.Service) error {
		if err := svc.SetEnabled(ctx, id, enabled); err != nil {
			return err
		}
		state := "off"
		if enabled {
			state = "on"
		}
		fmt.Printf("Alarm #%d is %s\n", id, state)
		return nil
	})
}

var ringCmd = &cobra.Command{
	Use:   "ring ID",
	Short: "Ring an alarm now and open its puzzle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runApp(cmd, id)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent alarm activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		alarmID, _ := cmd.Flags().GetInt("alarm")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QueryAlarmEvents(cmd.Context(), store.QueryOpts{
			Limit:   limit,
			AlarmID: alarmID,
		})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("Nothing has happened yet.")
			return nil
		}
		for _, ev := range events {
			fmt.Println(formatEvent(ev))
		}
		return nil
	},
}

func formatEvent(ev store.AlarmEventRecord) string {
	line := history.FormatEvent(ev)
	if ev.Detail != "" {
		line += "  " + ev.Detail
	}
	return line
}

func addAlarmFlags(c *cobra.Command) {
	c.Flags().String("time", "", "Alarm time as HH:MM (required)")
	c.Flags().String("puzzle", "", "Puzzle type: math, retype, shake, memory, color-match")
	c.Flags().String("label", "", "Alarm label")
	c.Flags().StringSlice("days", nil, "Repeat days, e.g. mon,wed,fri")
	c.Flags().Bool("no-vibrate", false, "Do not vibrate")
	c.Flags().String("ringtone", "", "Sound file to play")
}

func init() {
	addAlarmFlags(addCmd)
	_ = addCmd.MarkFlagRequired("time")

	historyCmd.Flags().Int("limit", 20, "Number of events to show")
	historyCmd.Flags().Int("alarm", 0, "Only show events for this alarm id")
}
