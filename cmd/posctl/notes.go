package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mesaYaPos/internal/modules/reservations/domain"
)

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Encode or decode the party composition stored in reservation notes",
	}
	cmd.AddCommand(newNotesDecodeCmd())
	cmd.AddCommand(newNotesEncodeCmd())
	return cmd
}

func newNotesDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <notes>",
		Short: "Decode notes text into a party composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := domain.ParseCustomerData(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(struct {
				domain.PartyComposition
				Guests int `json:"guests"`
			}{data, data.Guests()}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newNotesEncodeCmd() *cobra.Command {
	var (
		adults, children int
		childChair       bool
		kind, occasion   string
	)
	c := &cobra.Command{
		Use:   "encode",
		Short: "Encode a party composition into notes text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reservationType := domain.ReservationType(strings.ToLower(strings.TrimSpace(kind)))
			if !reservationType.IsValid() {
				return fmt.Errorf("invalid --type %q (want one of %v)", kind, domain.ReservationTypes())
			}
			if adults < 0 || children < 0 {
				return fmt.Errorf("--adults and --children must not be negative")
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.EncodeCustomerData(domain.PartyComposition{
				Adults:           adults,
				Children:         children,
				ChildChairNeeded: childChair,
				ReservationType:  reservationType,
				Occasion:         strings.TrimSpace(occasion),
			}))
			return nil
		},
	}
	c.Flags().IntVar(&adults, "adults", 1, "number of adults")
	c.Flags().IntVar(&children, "children", 0, "number of children")
	c.Flags().BoolVar(&childChair, "child-chair", false, "a child chair is needed")
	c.Flags().StringVar(&kind, "type", string(domain.ReservationTypeDining), "reservation type")
	c.Flags().StringVar(&occasion, "occasion", "", "optional occasion")
	return c
}
