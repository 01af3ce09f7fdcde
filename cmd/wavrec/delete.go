package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [recording...]",
	Aliases: []string{"rm"},
	Short:   "Delete recordings",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(false, nil)
		if err != nil {
			return err
		}

		for _, name := range args {
			if err := env.app.Delete(name); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", name)
		}
		return nil
	},
}
