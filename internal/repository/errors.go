// internal/repository/errors.go
package repository

import "errors"

var (
	ErrQueryFailed  = errors.New("QUERY_EXECUTION_FAILED")
	ErrSearchFailed = errors.New("SEARCH_QUERY_FAILED")
)
