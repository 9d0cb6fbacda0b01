package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()
		log.Info("database schema up to date")
		return nil
	},
}
