package domain

import "errors"

var (
	ErrNoData = errors.New("no data from upstream")
)
