package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(true, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		devices, err := env.app.ListDevices()
		if err != nil {
			return err
		}

		for _, d := range devices {
			marker := " "
			if d.Default {
				marker = "*"
			}
			var dirs string
			switch {
			case d.Input && d.Output:
				dirs = "in/out"
			case d.Input:
				dirs = "in"
			default:
				dirs = "out"
			}
			fmt.Printf("%s %-6s %s\n", marker, dirs, d.Name)
		}
		return nil
	},
}
