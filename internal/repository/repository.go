package repository

import (
	"database/sql"
	"errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// pageBounds clamps pagination inputs and returns the effective page
// size and row offset.
func pageBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return pageSize, (page - 1) * pageSize
}
