package domain

import "time"

// DatasetUpdate announces a freshly written NetCDF file so downstream
// consumers (the ERDDAP refresh job in particular) can pick it up.
type DatasetUpdate struct {
	Platform        string    `json:"platform"`
	Deployment      string    `json:"deployment"`
	Instrument      string    `json:"instrument"`
	File            string    `json:"file"`
	Samples         int       `json:"samples"`
	ProcessingLevel string    `json:"processing_level"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ID returns the stable key used to partition update messages, so all
// updates for one instrument land on the same partition in order.
func (u DatasetUpdate) ID() string {
	return u.Platform + "/" + u.Deployment + "/" + u.Instrument
}
