package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AILLCSteve/rotary-networking-app/internal/config"
)

var hashpwCmd = &cobra.Command{
	Use:   "hashpw <password>",
	Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashpw,
}

func init() {
	rootCmd.AddCommand(hashpwCmd)
}

func runHashpw(_ *cobra.Command, args []string) error {
	passwordCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	hash, err := passwordCfg.HashPassword(args[0])
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}
