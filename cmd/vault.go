package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/progress"
	"github.com/abhisek/nexus/internal/router"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Show your collected artifacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if view, _ := e.service.Navigate(router.ViewVault); view != router.ViewVault {
			fmt.Fprintln(out, "Pick your grade first: nexus grade <1-12>")
			return nil
		}

		p, err := e.service.Player()
		if err != nil {
			return err
		}
		if len(p.Inventory) == 0 {
			fmt.Fprintln(out, "Your vault is empty. Score 100% on a worksheet to earn an artifact.")
			return nil
		}

		counts := map[progress.Rarity]int{}
		fmt.Fprintf(out, "%-10s  %-10s  %-28s  %s\n", "Acquired", "Rarity", "Name", "Description")
		for i := len(p.Inventory) - 1; i >= 0; i-- {
			a := p.Inventory[i]
			counts[a.Rarity]++
			fmt.Fprintf(out, "%-10s  %-10s  %-28s  %s\n",
				a.AcquiredAt.Local().Format("2006-01-02"), a.Rarity, truncate(a.Name, 28), a.Description)
		}

		fmt.Fprintln(out)
		for _, r := range progress.AllRarities() {
			fmt.Fprintf(out, "%s: %d  ", r, counts[r])
		}
		fmt.Fprintln(out)
		return nil
	},
}
