package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cgsn-mio/moorproc/internal/adapter/rdb"
	"github.com/cgsn-mio/moorproc/internal/config"
)

func testDeployment() *rdb.Deployment {
	return &rdb.Deployment{
		Mooring:          "cp01cnsm",
		DeploymentName:   "D00013",
		Deployment:       13,
		Disposition:      "recovered",
		DeploymentStart:  "2018-03-28",
		DeploymentEnd:    "2018-10-05",
		Latitude:         40.1334,
		Longitude:        -70.7785,
		SiteDepth:        133.0,
		DeploymentCruise: "AR-28",
		RecoveryCruise:   "AR-34",
	}
}

func TestRenderStockTemplate(t *testing.T) {
	out, err := Render("", testDeployment())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, "cp01cnsm", doc["mooring"])
	assert.Equal(t, "D00013", doc["deployment"])
	assert.Equal(t, "recovered", doc["disposition"])
	assert.Equal(t, 40.1334, doc["latitude"])
	assert.Equal(t, "AR-34", doc["recovery_cruise"])
	assert.Contains(t, doc, "assemblies")
}

func TestRenderStockTemplateLoadsAsMooringConfig(t *testing.T) {
	out, err := Render("", testDeployment())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cp01cnsm_d00013.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o644))

	m, err := config.LoadMooring(path)
	require.NoError(t, err)
	assert.Equal(t, "cp01cnsm", m.Mooring)
	assert.Equal(t, 133.0, m.SiteDepth)
	assert.Len(t, m.Assemblies, 2)
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(
		"mooring: {{.Mooring}}\nsite_depth: {{.SiteDepth}}\n"), 0o644))

	out, err := Render(path, testDeployment())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, 133.0, doc["site_depth"])
}

func TestRenderRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("mooring: {{.Moorng}}\n"), 0o644))

	_, err := Render(path, testDeployment())
	assert.Error(t, err)
}

func TestRenderRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("mooring: [unclosed\n"), 0o644))

	_, err := Render(path, testDeployment())
	assert.Error(t, err)
}
