// Package erddap generates datasets.xml snippets for publishing processed
// NetCDF files through an ERDDAP server.
package erddap

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/ctessum/cdf"
)

// DataVariable describes one <dataVariable> element of the snippet.
type DataVariable struct {
	SourceName      string
	DestinationName string
	IOOSCategory    string
	DataType        string
	ColorBarMinimum *float64
	ColorBarMaximum *float64
}

// Snippet is the template context for one dataset.
type Snippet struct {
	DatasetID           string
	FileDir             string
	FileNameRegex       string
	ReloadEveryNMinutes int
	InfoURL             string
	SubsetVariables     string
	Keywords            string
	Variables           []DataVariable
}

const subsetVariables = "latitude, longitude, altitude, station"

// Generate reads a processed NetCDF file and produces a datasets.xml snippet
// for an EDDTableFromMultidimNcFiles dataset covering its directory.
func Generate(path, datasetID string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ff, err := cdf.Open(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	vars, keywords, err := dataVariables(ff)
	if err != nil {
		return "", err
	}

	snippet := Snippet{
		DatasetID:           datasetID,
		FileDir:             filepath.Dir(path),
		FileNameRegex:       `.*\.nc`,
		ReloadEveryNMinutes: 30,
		InfoURL:             "http://oceanobservatories.org",
		SubsetVariables:     subsetVariables,
		Keywords:            keywords,
		Variables:           vars,
	}

	var sb strings.Builder
	if err := snippetTemplate.Execute(&sb, snippet); err != nil {
		return "", fmt.Errorf("render snippet: %w", err)
	}
	return sb.String(), nil
}

// dataVariables maps every variable in the file onto its ERDDAP description.
func dataVariables(ff *cdf.File) ([]DataVariable, string, error) {
	names := ff.Header.Variables()
	sort.Strings(names)

	out := make([]DataVariable, 0, len(names))
	for _, name := range names {
		dv, err := describe(ff, name)
		if err != nil {
			return nil, "", fmt.Errorf("variable %s: %w", name, err)
		}
		out = append(out, dv)
	}
	return out, strings.Join(names, ","), nil
}

func describe(ff *cdf.File, name string) (DataVariable, error) {
	dv := DataVariable{
		SourceName:      name,
		DestinationName: name,
		IOOSCategory:    "Unknown",
	}
	switch name {
	case "time":
		dv.DestinationName = "time"
		dv.IOOSCategory = "Time"
	case "lat":
		dv.DestinationName = "latitude"
		dv.IOOSCategory = "Location"
		dv.ColorBarMinimum = ptr(-90)
		dv.ColorBarMaximum = ptr(90)
	case "lon":
		dv.DestinationName = "longitude"
		dv.IOOSCategory = "Location"
		dv.ColorBarMinimum = ptr(-180)
		dv.ColorBarMaximum = ptr(180)
	case "z":
		dv.DestinationName = "altitude"
		dv.IOOSCategory = "Location"
		dv.ColorBarMinimum = ptr(-8000)
		dv.ColorBarMaximum = ptr(8000)
	}

	n := 1
	for _, l := range ff.Header.Lengths(name) {
		n *= l
	}
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return dv, err
	}

	switch data := buf.(type) {
	case []float64:
		dv.DataType = "double"
		setBounds(&dv, data)
	case []float32:
		dv.DataType = "float"
		f64 := make([]float64, len(data))
		for i, v := range data {
			f64[i] = float64(v)
		}
		setBounds(&dv, f64)
	case []int32:
		dv.DataType = "int"
		f64 := make([]float64, len(data))
		for i, v := range data {
			f64[i] = float64(v)
		}
		setBounds(&dv, f64)
	case []int16:
		dv.DataType = "short"
	case []int8, []byte:
		dv.DataType = "String"
	default:
		dv.DataType = "String"
	}
	return dv, nil
}

// setBounds fills the color bar range from the data extremes unless the
// variable is a coordinate with fixed bounds.
func setBounds(dv *DataVariable, data []float64) {
	if dv.ColorBarMinimum != nil || dv.IOOSCategory == "Time" {
		return
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return
	}
	dv.ColorBarMinimum = &min
	dv.ColorBarMaximum = &max
}

func ptr(v float64) *float64 { return &v }

var snippetTemplate = template.Must(template.New("datasets.xml").Funcs(template.FuncMap{
	"val": func(p *float64) float64 { return *p },
}).Parse(
	`<dataset type="EDDTableFromMultidimNcFiles" datasetID="{{.DatasetID}}" active="true">
    <reloadEveryNMinutes>{{.ReloadEveryNMinutes}}</reloadEveryNMinutes>
    <fileDir>{{.FileDir}}</fileDir>
    <fileNameRegex>{{.FileNameRegex}}</fileNameRegex>
    <recursive>false</recursive>
    <removeMVRows>true</removeMVRows>
    <addAttributes>
        <att name="cdm_data_type">TimeSeries</att>
        <att name="cdm_timeseries_variables">{{.SubsetVariables}}</att>
        <att name="subsetVariables">{{.SubsetVariables}}</att>
        <att name="infoUrl">{{.InfoURL}}</att>
        <att name="keywords">{{.Keywords}}</att>
        <att name="sourceUrl">(local files)</att>
    </addAttributes>
{{- range .Variables}}
    <dataVariable>
        <sourceName>{{.SourceName}}</sourceName>
        <destinationName>{{.DestinationName}}</destinationName>
        <dataType>{{.DataType}}</dataType>
        <addAttributes>
            <att name="ioos_category">{{.IOOSCategory}}</att>
{{- if .ColorBarMinimum}}
            <att name="colorBarMinimum" type="double">{{val .ColorBarMinimum}}</att>
{{- end}}
{{- if .ColorBarMaximum}}
            <att name="colorBarMaximum" type="double">{{val .ColorBarMaximum}}</att>
{{- end}}
        </addAttributes>
    </dataVariable>
{{- end}}
</dataset>
`))
