package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mesaYaPos/internal/config"
	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/application/usecase"
	"mesaYaPos/internal/modules/reservations/infrastructure"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the reservations schema for the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Driver == config.StoreMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "memory store needs no migration")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			store, err := infrastructure.OpenStore(ctx, cfg.Store, true)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", store.Driver)
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	var grace time.Duration
	c := &cobra.Command{
		Use:   "sweep",
		Short: "Cancel pending reservations left unconfirmed past the grace period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if grace <= 0 {
				grace = cfg.Reservations.PendingGrace
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			store, err := infrastructure.OpenStore(ctx, cfg.Store, false)
			if err != nil {
				return err
			}
			defer store.Close()

			outbound := infrastructure.OpenOutbound(ctx, cfg, nil)
			defer outbound.Close()

			count, err := newSweepService(store.Repository, outbound, cfg, grace).SweepStale(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d stale reservation(s)\n", count)
			return nil
		},
	}
	c.Flags().DurationVar(&grace, "grace", 0, "override RESERVATION_PENDING_GRACE")
	return c
}

// newSweepService writes through the same cache and publishers as the server, so API
// reads and event listeners see the cancellations.
func newSweepService(repo port.ReservationRepository, outbound *infrastructure.Outbound, cfg *config.Config, grace time.Duration) *usecase.ReservationService {
	return usecase.NewReservationService(repo, outbound.Cache, outbound.Publisher, usecase.ServiceOptions{
		DefaultDuration: cfg.Reservations.DefaultDuration,
		PendingGrace:    grace,
	})
}
