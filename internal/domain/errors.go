package domain

import "errors"

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentExists    = errors.New("document already exists")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownField      = errors.New("unknown field")
	ErrFieldType         = errors.New("invalid field value type")
	ErrDanglingColumnRef = errors.New("task references a missing column")
)
