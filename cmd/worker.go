package cmd

import (
	"github.com/emrgen/research/internal/config"
	"github.com/emrgen/research/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(workerCmd())
}

func workerCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "worker",
		Short: "run the scheduled source dedup and serve metrics",
		Run: func(cmd *cobra.Command, args []string) {
			if err := server.Start(config.LoadConfig()); err != nil {
				logrus.Fatal(err)
			}
		},
	}

	return command
}
