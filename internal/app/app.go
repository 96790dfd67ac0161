package app

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func Main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "ticketdraft",
		Short:         "Draft help desk replies from resolved ticket precedents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfgPath != "" {
				if err := os.Setenv("CONFIG_PATH", cfgPath); err != nil {
					log.Printf("set CONFIG_PATH: %v", err)
				}
			}
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.yaml)")

	root.AddCommand(draftCMD(), nearestCMD(), scoreCMD(), watchCMD(), statsCMD(), historyCMD())
	return root
}
