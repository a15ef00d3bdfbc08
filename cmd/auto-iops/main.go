package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout, defaultRunner()).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the CLI. The enable flags are accepted both before and
// after the command name; see flagContext.
func newApp(w io.Writer, r runner) *cli.App {
	return &cli.App{
		Name:      "auto-iops",
		Usage:     "Enable Auto IOPS on Azure MySQL flexible servers",
		Writer:    w,
		ErrWriter: w,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "subscription",
				Usage:   "Azure subscription id (defaults to the Azure CLI's current subscription)",
				EnvVars: []string{"AZURE_SUBSCRIPTION_ID"},
			},
			&cli.StringFlag{
				Name:    "access-token",
				Usage:   "Use this bearer token instead of the Azure CLI login (requires --subscription)",
				EnvVars: []string{"AZURE_ACCESS_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Azure Resource Manager endpoint",
				EnvVars: []string{"AUTO_IOPS_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:  "api-version",
				Usage: "MySQL flexible server API version",
			},
		}, enableFlags()...),
		Commands: []*cli.Command{
			{
				Name:   "enable",
				Usage:  "Enable Auto IOPS on eligible servers (main command)",
				Flags:  enableFlags(),
				Action: r.enableCommand,
			},
			{
				Name:  "list",
				Usage: "List flexible servers with their tier and Auto IOPS state",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "resource-group",
						Aliases: []string{"g"},
						Usage:   "Only list this resource group",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the inventory as JSON",
					},
				},
				Action: r.listCommand,
			},
			{
				Name:   "help",
				Usage:  "Show detailed help",
				Action: showDetailedHelp,
			},
		},
		// Running without a command is the same as "enable"
		Action: r.enableCommand,
	}
}
