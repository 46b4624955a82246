package domain

import "errors"

// Error taxonomy for the signal pipeline. Batch stages log and skip the
// ticker; the inference path maps these onto HTTP status codes.
var (
	// ErrDataUnavailable means the raw or cleaned series for a ticker is
	// missing, empty, or entirely unparsable.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrTickerNotSupported means the requested symbol is outside the
	// configured universe. Never retried.
	ErrTickerNotSupported = errors.New("ticker not supported")

	// ErrMissingArtifact means the feature table or a trained model is
	// absent for an otherwise supported ticker.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrInsufficientHistory means the usable dataset fell below the
	// training-viability floor after rolling windows and label horizons.
	ErrInsufficientHistory = errors.New("insufficient history")
)
