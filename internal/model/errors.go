package model

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrPlanExists is returned when a plan would be generated over existing tasks.
	ErrPlanExists = errors.New("project already has a plan")
)
