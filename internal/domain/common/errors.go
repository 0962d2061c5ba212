package common

import "errors"

var (
	ErrNotFound   = errors.New("requested item not found")
	ErrNoData     = errors.New("no data loaded for source")
	ErrBadRequest = errors.New("bad request")
)
