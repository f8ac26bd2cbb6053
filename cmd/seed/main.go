package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/db"
	"github.com/AlaBenAicha/sahtee-sub002/internal/seed"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/spf13/cobra"
)

func main() {
	var (
		organizationID string
		clean          bool
		force          bool
	)

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate an organization with demo safety data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clean && !force {
				fmt.Printf("This will DELETE all data for organization %q before reseeding. Continue? [y/N] ", organizationID)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if strings.ToLower(strings.TrimSpace(answer)) != "y" {
					fmt.Println("aborted")
					return nil
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			s := store.NewMongo(db.DB)
			return seed.Run(ctx, s, seed.Options{
				OrganizationID: organizationID,
				Clean:          clean,
			})
		},
	}

	rootCmd.Flags().StringVar(&organizationID, "org", "org-demo", "organization to seed")
	rootCmd.Flags().BoolVar(&clean, "clean", false, "purge existing organization data before reseeding")
	rootCmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
