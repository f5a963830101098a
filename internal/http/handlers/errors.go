package handlers

import "errors"

var (
	errMaterialIDRequired  = errors.New("material_id is required")
	errDatabaseUnavailable = errors.New("database unavailable")
)
