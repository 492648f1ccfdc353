// Package gbif submits Darwin Core Archive download jobs to the GBIF
// occurrence API. It is triggered on its own schedule and does not feed the
// inference pipeline.
package gbif

import "time"

const (
	// Format is the requested archive format.
	Format = "DWCA"

	DefaultDaysBack = 7
)

// BasisOfRecord is the fixed allow-list every download predicate carries.
var BasisOfRecord = []string{"HUMAN_OBSERVATION", "MACHINE_OBSERVATION", "PRESERVED_SPECIMEN"}

type Credentials struct {
	Username string
	Password string
	Email    string
}

// Predicate is one node of the GBIF query tree.
type Predicate struct {
	Type       string      `json:"type"`
	Key        string      `json:"key,omitempty"`
	Value      string      `json:"value,omitempty"`
	Values     []string    `json:"values,omitempty"`
	Predicates []Predicate `json:"predicates,omitempty"`
}

type DownloadRequest struct {
	Creator               string    `json:"creator"`
	NotificationAddresses []string  `json:"notificationAddresses"`
	Format                string    `json:"format"`
	Predicate             Predicate `json:"predicate"`
}

// BuildDownloadRequest assembles the download predicate: event date from
// midnight UTC daysBack days before now (open-ended), non-null coordinates,
// and the basis-of-record allow-list.
func BuildDownloadRequest(creds Credentials, daysBack int, now time.Time) DownloadRequest {
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	day := now.UTC().AddDate(0, 0, -daysBack)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	return DownloadRequest{
		Creator:               creds.Username,
		NotificationAddresses: []string{creds.Email},
		Format:                Format,
		Predicate: Predicate{
			Type: "and",
			Predicates: []Predicate{
				{Type: "within", Key: "eventDate", Value: start.Format("2006-01-02T15:04:05Z") + ","},
				{Type: "isNotNull", Key: "decimalLatitude"},
				{Type: "isNotNull", Key: "decimalLongitude"},
				{Type: "in", Key: "basisOfRecord", Values: BasisOfRecord},
			},
		},
	}
}
