package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cgsn-mio/moorproc/internal/erddap"
)

var erddapFlags struct {
	datasetID string
	outfile   string
}

var erddapCmd = &cobra.Command{
	Use:   "erddap <file.nc>",
	Short: "Emit a datasets.xml snippet for a processed NetCDF file",
	Long: `Read a processed NetCDF file and emit the EDDTableFromMultidimNcFiles
snippet describing it, ready to paste into the ERDDAP datasets.xml.`,
	Args: cobra.ExactArgs(1),
	RunE: runERDDAP,
}

func init() {
	f := erddapCmd.Flags()
	f.StringVar(&erddapFlags.datasetID, "dataset-id", "", "ERDDAP dataset ID (default: derived from the file name)")
	f.StringVar(&erddapFlags.outfile, "outfile", "", "output path (default: stdout)")
}

func runERDDAP(_ *cobra.Command, args []string) error {
	path := args[0]

	id := erddapFlags.datasetID
	if id == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		id = strings.ReplaceAll(base, ".", "_")
	}

	snippet, err := erddap.Generate(path, id)
	if err != nil {
		return err
	}
	return writeOutput(erddapFlags.outfile, []byte(snippet))
}
