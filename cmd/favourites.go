package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/store"
)

var favouritesJSON bool

var favouritesCmd = &cobra.Command{
	Use:   "favourites",
	Short: "Manage saved listings",
}

var favouritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all saved listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		favs, err := store.NewFavouriteStore(cfg.Store.FavouritesPath).All()
		if err != nil {
			return eris.Wrap(err, "load favourites")
		}

		if favouritesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(favs)
		}

		if len(favs) == 0 {
			fmt.Fprintln(os.Stdout, "no favourites saved")
			return nil
		}
		for _, fav := range favs {
			price := "price unknown"
			if fav.Price.Known {
				price = fmt.Sprintf("£%d", fav.Price.Value)
			}
			fmt.Fprintf(os.Stdout, "%s (%s) %s\n  %s\n", fav.Title, price, fav.Source, fav.URL)
		}
		return nil
	},
}

var favouritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every saved listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		s := store.NewFavouriteStore(cfg.Store.FavouritesPath)
		if err := s.Clear(); err != nil {
			return eris.Wrap(err, "clear favourites")
		}
		zap.L().Info("favourites cleared", zap.String("path", s.Path()))
		fmt.Fprintln(os.Stdout, "favourites cleared")
		return nil
	},
}

func init() {
	favouritesListCmd.Flags().BoolVar(&favouritesJSON, "json", false, "print favourites as JSON")
	favouritesCmd.AddCommand(favouritesListCmd)
	favouritesCmd.AddCommand(favouritesClearCmd)
	rootCmd.AddCommand(favouritesCmd)
}
