package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/shgo/internal/objective"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in benchmark objectives",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range objective.Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
