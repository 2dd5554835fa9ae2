package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"photoshare/database"
	"photoshare/logger"
	"photoshare/seed"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer db.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Indexes created")
		return nil
	},
}

var seedOpts seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fake users, photos, comments and favorites",
	Long: "Insert fake data for development. Every seeded account uses the password " +
		seed.Password + ".",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedOpts.Users < 0 || seedOpts.PhotosPerUser < 0 || seedOpts.Comments < 0 {
			return fmt.Errorf("counts must not be negative")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		res, err := seed.NewSeeder(a.services, seedOpts.Seed).Run(ctx, seedOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d photos, %d comments, %d favorites\n",
			res.Users, res.Photos, res.Comments, res.Favorites)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.Users, "users", 10, "Number of users to create")
	seedCmd.Flags().IntVar(&seedOpts.PhotosPerUser, "photos", 3, "Photos per user")
	seedCmd.Flags().IntVar(&seedOpts.Comments, "comments", 30, "Comments to spread over the photos")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0, "Random seed for reproducible data (0 = random)")
}
