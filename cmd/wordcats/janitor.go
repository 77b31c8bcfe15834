// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var janitorCmd = &cobra.Command{
	Use:   "janitor",
	Short: "Run account cleanup once",
	Long: `Runs a single janitor pass: every ledger is scanned, accounts that
no longer exist on the host platform are anonymized, and the indexes are
audited afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.janitor.RunPass(cmd.Context())
		if err != nil {
			return fmt.Errorf("janitor pass: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var bulkDeleteCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Remove every category created by a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.janitor.BulkDeleteUser(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("bulk delete %s: %w", args[0], err)
		}
		if !res.DeletedAll {
			return fmt.Errorf("bulk delete %s: store busy, try again", args[0])
		}
		fmt.Printf("deleted %d categories\n", len(res.Deleted))
		return nil
	},
}

func init() {
	janitorCmd.AddCommand(bulkDeleteCmd)
}
