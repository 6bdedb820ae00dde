package provider

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrRetrieval = errors.New("result retrieval failed")
)
