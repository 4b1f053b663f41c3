package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cgsn-mio/moorproc/internal/adapter/rdb"
	"github.com/cgsn-mio/moorproc/internal/templates"
)

var templateFlags struct {
	mooring    string
	deployment string
	template   string
	outfile    string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Generate a mooring configuration from the asset database",
	Long: `Fetch the deployment build record from the OOI roundabout database
and render it into a mooring configuration YAML skeleton.

The generated file carries the deployment identity, coordinates, dates, and
cruise names; the instrument lists are filled in by hand afterwards. Set
RDB_TOKEN for authenticated access.`,
	RunE: runTemplate,
}

func init() {
	f := templateCmd.Flags()
	f.StringVar(&templateFlags.mooring, "mooring", "", "mooring designator, e.g. cp01cnsm")
	f.StringVar(&templateFlags.deployment, "deployment", "", "deployment name, e.g. D00013")
	f.StringVar(&templateFlags.template, "template", "", "custom template file (default: built-in skeleton)")
	f.StringVar(&templateFlags.outfile, "outfile", "", "output path (default: stdout)")

	cobra.CheckErr(templateCmd.MarkFlagRequired("mooring"))
	cobra.CheckErr(templateCmd.MarkFlagRequired("deployment"))
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	if cfg.RDBToken == "" {
		return errors.New("RDB_TOKEN is not set")
	}

	client := rdb.NewClient(cfg.RDBHost, cfg.RDBToken, cfg.RDBTimeout, logger)
	dep, err := client.FetchDeployment(cmd.Context(), templateFlags.mooring, templateFlags.deployment)
	if err != nil {
		return err
	}

	out, err := templates.Render(templateFlags.template, dep)
	if err != nil {
		return err
	}
	return writeOutput(templateFlags.outfile, out)
}
