package cli

import (
	commands "github.com/urfave/cli/v3"
)

// Command builds the notifybarrier command tree.
func Command() *commands.Command {
	return &commands.Command{
		Name:  "notifybarrier",
		Usage: "Drive a simulated storage cluster and wait for its notifications",
		Commands: []*commands.Command{
			{
				Name:      "run",
				Usage:     "Run a scenario group or one of its stages",
				ArgsUsage: "[group] [stage]",
				Flags: []commands.Flag{
					&commands.BoolFlag{
						Name:    "verbose",
						Usage:   "Log barrier and cluster activity",
						Aliases: []string{"v"},
						Value:   false,
					},
					&commands.StringFlag{
						Name:  "config",
						Usage: "Harness file to read instead of ./notifybarrier.yaml",
					},
					&commands.BoolFlag{
						Name:  "dual-node",
						Usage: "Run both storage processors",
					},
					&commands.DurationFlag{
						Name:  "grace-period",
						Usage: "How long a satisfied wait stays armed (0 disables)",
					},
					&commands.DurationFlag{
						Name:  "wait-timeout",
						Usage: "Default timeout of each wait",
					},
				},
				Action: RunScenario,
			},
			{
				Name:   "list",
				Usage:  "Show available scenario groups",
				Action: ListGroups,
			},
			{
				Name:      "info",
				Usage:     "Show the stages of a scenario group",
				ArgsUsage: "<group>",
				Action:    ShowInfo,
			},
			{
				Name:      "init",
				Usage:     "Write a default harness file",
				ArgsUsage: "[path]",
				Action:    InitConfig,
			},
		},
	}
}
