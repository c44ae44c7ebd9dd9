package cli

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/polystake/noderegistry/cli/registrynode"
)

// RootCmd represents the root command of the registry CLI
var RootCmd = &cobra.Command{
	Use:   "registrynode",
	Short: "registry-node",
	Long:  `Registry node is a CLI for running the node operator registry.`,
}

// Execute executes the root command
func Execute(appName, version string) {
	RootCmd.Short = appName
	RootCmd.Version = version

	if err := RootCmd.Execute(); err != nil {
		log.Fatal("failed to execute root command: ", err)
	}
}

func init() {
	RootCmd.AddCommand(registrynode.StartNodeCmd)
}
