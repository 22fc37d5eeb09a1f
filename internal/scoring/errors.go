package scoring

import "errors"

var (
	// ErrDataUnavailable means no macro snapshot exists at all.
	ErrDataUnavailable = errors.New("no macro data found")
	// ErrEntityNotScored means the company has no financial snapshot in the panel.
	ErrEntityNotScored = errors.New("no latest financial data for company")
	// ErrInvalidOverride means a what-if override carries a non-numeric value.
	ErrInvalidOverride = errors.New("invalid what-if override")
	// ErrInsufficientData means the panel has no rows to train on.
	ErrInsufficientData = errors.New("panel has no rows to train on")
	// ErrModelNotTrained is returned when scoring is requested before training and auto-training is off.
	ErrModelNotTrained = errors.New("model not trained")
)
