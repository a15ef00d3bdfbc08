package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/hemantobora/auto-iops/internal/cloud"
)

func enableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "resource-group",
			Aliases: []string{"g"},
			Usage:   "Only reconcile this resource group (bypasses the resource group prompt)",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Reconcile every resource group in the subscription",
		},
		&cli.StringFlag{
			Name:  "server",
			Usage: "Only touch the server with this name (case-insensitive)",
		},
		&cli.IntFlag{
			Name:  "token-preview",
			Usage: "Number of token characters to show (masked) in the console; 0 hides the preview",
			Value: cloud.DefaultTokenPreview,
		},
		&cli.StringFlag{
			Name:  "report-file",
			Usage: "Write the run report as JSON to this file or directory",
		},
		&cli.StringFlag{
			Name:  "report-s3-bucket",
			Usage: "Upload the run report to this S3 bucket",
		},
		&cli.StringFlag{
			Name:    "aws-profile",
			Usage:   "AWS credential profile for --report-s3-bucket",
			EnvVars: []string{"AWS_PROFILE"},
		},
		&cli.StringFlag{
			Name:  "report-blob-account",
			Usage: "Storage account name or URL for uploading the run report",
		},
		&cli.StringFlag{
			Name:  "report-blob-container",
			Usage: "Blob container for the run report (with --report-blob-account)",
		},
		&cli.BoolFlag{
			Name:  "no-interactive",
			Usage: "Never prompt; without --resource-group every group is reconciled",
		},
	}
}

// authSettings are the global credential flags
type authSettings struct {
	Subscription string
	Token        string
}

// runner carries out parsed commands. Tests swap the funcs to capture what
// the flags resolved to.
type runner struct {
	enable          func(ctx context.Context, auth authSettings, cliContext *cloud.CLIContext) error
	list            func(ctx context.Context, auth authSettings, cliContext *cloud.CLIContext) error
	stdinIsTerminal func() bool
}

func defaultRunner() runner {
	return runner{
		enable: func(ctx context.Context, auth authSettings, cliContext *cloud.CLIContext) error {
			manager, err := newManager(auth)
			if err != nil {
				return err
			}
			_, err = manager.Enable(ctx, cliContext)
			return err
		},
		list: func(ctx context.Context, auth authSettings, cliContext *cloud.CLIContext) error {
			manager, err := newManager(auth)
			if err != nil {
				return err
			}
			_, err = manager.List(ctx, cliContext)
			return err
		},
		stdinIsTerminal: func() bool { return isTerminal(os.Stdin) },
	}
}

// flagContext returns the nearest context in which name was given, so a
// flag typed before the command name is not shadowed by the command's
// unset copy of it.
func flagContext(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx
		}
	}
	return c
}

func stringFlag(c *cli.Context, name string) string {
	return flagContext(c, name).String(name)
}

func boolFlag(c *cli.Context, name string) bool {
	return flagContext(c, name).Bool(name)
}

func intFlag(c *cli.Context, name string) int {
	return flagContext(c, name).Int(name)
}

func readAuth(c *cli.Context) (authSettings, error) {
	auth := authSettings{
		Subscription: stringFlag(c, "subscription"),
		Token:        stringFlag(c, "access-token"),
	}
	if auth.Token != "" && auth.Subscription == "" {
		return authSettings{}, fmt.Errorf("--access-token requires --subscription")
	}
	return auth, nil
}

// connection copies the global connection flags into the context
func connection(c *cli.Context, cliContext *cloud.CLIContext) {
	cliContext.Endpoint = stringFlag(c, "endpoint")
	cliContext.APIVersion = stringFlag(c, "api-version")
}

func newManager(auth authSettings) (*cloud.ReconcileManager, error) {
	provider, err := cloud.NewAuthProvider(auth.Subscription, auth.Token)
	if err != nil {
		return nil, err
	}
	return cloud.NewReconcileManager(provider, cloud.WithProgress(isTerminal(os.Stdout))), nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// enableCommand runs the reconciliation
func (r runner) enableCommand(c *cli.Context) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("unexpected argument %q; see 'auto-iops help'", c.Args().First())
	}
	auth, err := readAuth(c)
	if err != nil {
		return err
	}

	cliContext := &cloud.CLIContext{
		ResourceGroup:       stringFlag(c, "resource-group"),
		AllGroups:           boolFlag(c, "all"),
		TargetServer:        stringFlag(c, "server"),
		Interactive:         !boolFlag(c, "no-interactive") && r.stdinIsTerminal(),
		TokenPreview:        intFlag(c, "token-preview"),
		ReportFile:          stringFlag(c, "report-file"),
		ReportS3Bucket:      stringFlag(c, "report-s3-bucket"),
		AWSProfile:          stringFlag(c, "aws-profile"),
		ReportBlobAccount:   stringFlag(c, "report-blob-account"),
		ReportBlobContainer: stringFlag(c, "report-blob-container"),
	}
	connection(c, cliContext)
	if err := cliContext.Validate(); err != nil {
		return err
	}
	return r.enable(c.Context, auth, cliContext)
}

// listCommand prints the server inventory without changing anything
func (r runner) listCommand(c *cli.Context) error {
	auth, err := readAuth(c)
	if err != nil {
		return err
	}
	cliContext := &cloud.CLIContext{
		ResourceGroup: stringFlag(c, "resource-group"),
		JSON:          c.Bool("json"),
	}
	connection(c, cliContext)
	return r.list(c.Context, auth, cliContext)
}

// showDetailedHelp prints usage with examples
func showDetailedHelp(c *cli.Context) error {
	help := `
🎛️  auto-iops - Auto IOPS for Azure MySQL flexible servers

Finds MySQL flexible servers in a subscription and turns on Auto IOPS
(storage.autoIoScaling) for servers in the GeneralPurpose and
BusinessCritical tiers. Servers that already have it are left alone.

BASIC USAGE:
  auto-iops                         # Interactive mode (same as "enable")
  auto-iops list                    # Show servers, tiers and Auto IOPS state
  auto-iops help                    # Show this help

BYPASS INTERACTIVENESS:
  auto-iops enable --all                           # Every resource group
  auto-iops enable -g my-rg                        # One resource group
  auto-iops enable -g my-rg --server db-prod       # One server
  auto-iops enable --no-interactive                # Never prompt (all groups)

  Prompts are also skipped when stdin is not a terminal.

REPORTS (written only when the run succeeds):
  --report-file ./reports                          # Local JSON
  --report-s3-bucket my-bucket [--aws-profile p]   # Amazon S3
  --report-blob-account acct --report-blob-container reports

AUTHENTICATION:
  Uses your Azure CLI login ("az login"). The subscription is taken from
  --subscription, AZURE_SUBSCRIPTION_ID, or "az account show".

ENVIRONMENT VARIABLES:
  AZURE_SUBSCRIPTION_ID    # Subscription to reconcile
  AZURE_ACCESS_TOKEN       # Bearer token used instead of the Azure CLI login
  AUTO_IOPS_ENDPOINT       # Resource Manager endpoint override
  AWS_PROFILE              # AWS profile for S3 report export

EXIT STATUS:
  Any failure stops the run immediately and exits non-zero. No summary is
  printed for a failed run; servers already updated stay updated and are
  skipped on the next run.
`

	fmt.Fprint(c.App.Writer, help)
	return nil
}
