package main

import (
	"encoding/json"

	"github.com/samuelfneumann/gonav/environment/envconfig"
	"github.com/spf13/cobra"
)

// ConfigEnv names the environment variable holding the default path of
// the environment configuration
const ConfigEnv = "GONAV_CONFIG"

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gonav",
		Short:        "Run waypoint navigation experiments",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		runCommand(),
		configCommand(),
	)

	return cmd
}

func configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print an example environment configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(envconfig.Example(), "", "  ")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
