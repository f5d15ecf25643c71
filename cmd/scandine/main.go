package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/scandine-backend/internal/app"
)

var rootCmd = &cobra.Command{
	Use:           "scandine",
	Short:         "Scandine restaurant menu backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background maintenance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.OpenBase()
		if err != nil {
			return err
		}
		defer b.Close()
		b.Log.Info("Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo shop, its catalog and owner account",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.OpenBase()
		if err != nil {
			return err
		}
		defer b.Close()
		res, err := app.SeedDemo(cmd.Context(), b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded /m/%s with %d categories and %d products (owner %s)\n",
			res.Shop.Slug, res.Categories, res.Products, res.Owner.Email)
		return nil
	},
}

var superadminCmd = &cobra.Command{
	Use:   "superadmin",
	Short: "Manage platform superadmins",
}

var (
	superadminEmail    string
	superadminPassword string
)

var superadminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a superadmin, or promote an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.OpenBase()
		if err != nil {
			return err
		}
		defer b.Close()
		u, err := app.CreateSuperAdmin(cmd.Context(), b, superadminEmail, superadminPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "superadmin %s ready\n", u.Email)
		return nil
	},
}

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Trial maintenance",
}

var trialsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Downgrade every shop whose trial has lapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.OpenBase()
		if err != nil {
			return err
		}
		defer b.Close()
		n, err := app.SweepTrials(cmd.Context(), b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downgraded %d shop(s)\n", n)
		return nil
	},
}

func init() {
	superadminCreateCmd.Flags().StringVar(&superadminEmail, "email", "", "Account email")
	superadminCreateCmd.Flags().StringVar(&superadminPassword, "password", "", "Account password")
	_ = superadminCreateCmd.MarkFlagRequired("email")
	_ = superadminCreateCmd.MarkFlagRequired("password")

	superadminCmd.AddCommand(superadminCreateCmd)
	trialsCmd.AddCommand(trialsSweepCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(superadminCmd)
	rootCmd.AddCommand(trialsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
