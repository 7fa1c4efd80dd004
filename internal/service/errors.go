package service

import (
	"errors"

	"homeplan/internal/model"
)

var (
	ErrNotFound   = model.ErrNotFound
	ErrPlanExists = model.ErrPlanExists
	// ErrInvalidInput wraps caller mistakes such as an unknown stage name.
	ErrInvalidInput = errors.New("invalid input")
)
