package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mooring is the per-deployment configuration consumed by the batch command:
// one mooring, one deployment, the surveyed coordinates, and every
// instrument on each assembly in processing order. Files are written by hand
// or generated from the RDB build record by the template command.
type Mooring struct {
	Mooring    string  `yaml:"mooring"`
	Deployment string  `yaml:"deployment"`
	Name       string  `yaml:"name,omitempty"`
	Latitude   float64 `yaml:"latitude"`
	Longitude  float64 `yaml:"longitude"`
	SiteDepth  float64 `yaml:"site_depth,omitempty"`

	Assemblies []Assembly `yaml:"assemblies"`
}

// Assembly is one platform of the mooring: the surface buoy, the NSIF
// (near-surface instrument frame), or the MFN (multi-function node).
type Assembly struct {
	Name        string       `yaml:"name"`
	Depth       float64      `yaml:"depth"`
	Instruments []Instrument `yaml:"instruments"`
}

// Instrument configures one processing run within an assembly.
type Instrument struct {
	// Class selects the processor (ctdbp, dosta, metbk, gps, pwrsys, hydgn).
	Class string `yaml:"class"`
	// Name is the data directory name when it differs from the class
	// (e.g. metbk1 and metbk2 on moorings carrying two units).
	Name string `yaml:"name,omitempty"`
	// Serial is the instrument serial number used for calibration lookups.
	Serial string `yaml:"serial,omitempty"`
	// CTD names the co-located CTD directory for salinity/density
	// corrections.
	CTD string `yaml:"ctd,omitempty"`
	// Burst enables 15-minute median burst averaging.
	Burst bool `yaml:"burst,omitempty"`
	// Switch carries processor-specific mode selection (e.g. psc or mpea
	// for the power system).
	Switch string `yaml:"switch,omitempty"`
	// Depth overrides the assembly depth for this instrument.
	Depth *float64 `yaml:"depth,omitempty"`
}

// DirName returns the data directory name for the instrument.
func (i Instrument) DirName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Class
}

// LoadMooring reads and validates a YAML mooring configuration file.
func LoadMooring(path string) (*Mooring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mooring config: %w", err)
	}

	var m Mooring
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mooring config: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mooring config %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the configuration for the mistakes that used to slip into
// the hand-edited runbooks: missing identity fields, out-of-range
// coordinates, duplicate instrument directories.
func (m *Mooring) Validate() error {
	if m.Mooring == "" {
		return fmt.Errorf("mooring name is required")
	}
	if m.Deployment == "" {
		return fmt.Errorf("deployment name is required")
	}
	if m.Latitude < -90 || m.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", m.Latitude)
	}
	if m.Longitude < -180 || m.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", m.Longitude)
	}
	if len(m.Assemblies) == 0 {
		return fmt.Errorf("at least one assembly is required")
	}

	seen := make(map[string]bool)
	for _, a := range m.Assemblies {
		if a.Name == "" {
			return fmt.Errorf("assembly name is required")
		}
		for _, inst := range a.Instruments {
			if inst.Class == "" {
				return fmt.Errorf("assembly %s: instrument class is required", a.Name)
			}
			dir := inst.DirName()
			if seen[dir] {
				return fmt.Errorf("assembly %s: duplicate instrument directory %s", a.Name, dir)
			}
			seen[dir] = true
		}
	}
	return nil
}
