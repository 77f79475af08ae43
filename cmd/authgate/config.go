package main

import (
	"encoding/json"
	"fmt"

	"github.com/MrEthical07/authgate"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the security posture of the environment configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := authgate.LoadConfigFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			engine, err := authgate.New().
				WithConfig(cfg).
				WithLogger(newLogger(authgate.LogConfig{Level: "error"})).
				Build()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			defer engine.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(engine.SecurityReport())
		},
	}
}
