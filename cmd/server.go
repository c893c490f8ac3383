package cmd

import (
	"github.com/spf13/cobra"
	"voice-capture/config"
	server2 "voice-capture/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start capture http server",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
