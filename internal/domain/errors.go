package domain

import "errors"

var (
	// ErrFetch marks transport failures and non-success HTTP statuses.
	ErrFetch = errors.New("fetch failed")
	// ErrParse marks malformed or unexpected feed content.
	ErrParse = errors.New("parse failed")
	// ErrInvalidArgument marks out-of-range geometry inputs.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrGeocode marks reverse-geocoding failures. Callers recover locally.
	ErrGeocode = errors.New("geocode failed")
)
