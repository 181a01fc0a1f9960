package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abhisek/puzzlealarm/internal/store"
	"github.com/spf13/cobra"
)

// exactAlarmsKey stores whether the user allows exact wake-ups. A missing
// value means allowed.
const exactAlarmsKey = "exact_alarms"

const (
	permissionGranted = "granted"
	permissionDenied  = "denied"
)

// exactAlarmsAllowed reads the exact-alarm permission. Read failures fall
// back to allowed.
func exactAlarmsAllowed(ctx context.Context, prefs *store.Preferences) bool {
	v, err := prefs.Get(ctx, exactAlarmsKey)
	if err != nil {
		if !errors.Is(err, store.ErrNoValue) {
			fmt.Fprintf(os.Stderr, "warning: failed to read alarm permission: %v\n", err)
		}
		return true
	}
	return v != permissionDenied
}

var permissionCmd = &cobra.Command{
	Use:       "permission [grant|deny]",
	Short:     "Show or change whether alarms may be scheduled",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"grant", "deny"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		prefs := st.Preferences()

		if len(args) == 1 {
			value := permissionGranted
			if args[0] == "deny" {
				value = permissionDenied
			}
			if err := prefs.Put(ctx, exactAlarmsKey, value); err != nil {
				return fmt.Errorf("save permission: %w", err)
			}
		}

		if exactAlarmsAllowed(ctx, prefs) {
			fmt.Println("Alarms may be scheduled.")
		} else {
			fmt.Println("Alarm scheduling is denied. Run `puzzlealarm permission grant` to allow it.")
		}
		return nil
	},
}
