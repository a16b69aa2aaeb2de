package service

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrColumnNotFound = errors.New("column not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrCommitFailed   = errors.New("batch commit failed")
)
