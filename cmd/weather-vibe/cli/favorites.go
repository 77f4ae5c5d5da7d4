package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite cities",
	}
	cmd.AddCommand(newFavoritesListCmd(), newFavoritesAddCmd(), newFavoritesRemoveCmd(), newFavoritesSetCmd())
	return cmd
}

func newFavoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List favorite cities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			cities := svc.Favorites()
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string][]string{"cities": cities})
			}
			p.list(cities)
			return nil
		},
	}
}

func newFavoritesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <city>...",
		Short: "Add cities to favorites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			for _, city := range args {
				added, err := svc.AddFavorite(city)
				if err != nil {
					return fmt.Errorf("add %s: %w", city, err)
				}
				if added {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", city)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is already a favorite\n", city)
				}
			}
			return nil
		},
	}
}

func newFavoritesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <city>...",
		Aliases: []string{"rm"},
		Short:   "Remove cities from favorites",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			for _, city := range args {
				removed, err := svc.RemoveFavorite(city)
				if err != nil {
					return fmt.Errorf("remove %s: %w", city, err)
				}
				if removed {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", city)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is not a favorite\n", city)
				}
			}
			return nil
		},
	}
}

func newFavoritesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [city...]",
		Short: "Replace the favorites list (no cities clears it)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}
			if err := svc.SaveFavorites(args); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Tracking %d cities\n", len(svc.Favorites()))
			return nil
		},
	}
}
