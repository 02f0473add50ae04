package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/progress"
)

var avatarCmd = &cobra.Command{
	Use:   "avatar [id]",
	Short: "List avatars or switch to an unlocked one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			p, err := e.service.SelectAvatar(cmd.Context(), args[0])
			if errors.Is(err, progress.ErrAvatarLocked) {
				if a, ok := progress.LookupAvatar(args[0]); ok {
					return fmt.Errorf("%s unlocks at level %d", a.Name, a.RequiredLevel)
				}
				return fmt.Errorf("unknown avatar %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Avatar set to %s.\n", p.CurrentAvatar)
			return nil
		}

		p, err := e.service.Player()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-10s  %-10s  %-6s  %s\n", "ID", "Name", "Level", "Status")
		for _, a := range progress.Avatars() {
			status := fmt.Sprintf("locked (level %d)", a.RequiredLevel)
			switch {
			case a.ID == p.CurrentAvatar:
				status = "current"
			case p.IsUnlocked(a.ID):
				status = "unlocked"
			}
			fmt.Fprintf(out, "%-10s  %-10s  %-6d  %s\n", a.ID, a.Name, a.RequiredLevel, status)
		}
		return nil
	},
}
