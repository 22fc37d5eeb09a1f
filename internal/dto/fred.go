package dto

import "time"

const FREDMissingValue = "."

type FREDObservationsResponse struct {
	Observations []FREDRawObservation `json:"observations"`
	ErrorCode    int                  `json:"error_code,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

type FREDRawObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// FREDObservation is a parsed, non-missing data point of a series.
type FREDObservation struct {
	SeriesID string
	Date     time.Time
	Value    float64
}
