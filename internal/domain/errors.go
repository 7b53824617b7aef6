package domain

import "errors"

// Domain errors
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternalError          = errors.New("internal error")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrCategoryRequired       = errors.New("category is required")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidFrequency       = errors.New("invalid frequency")
	ErrInvalidMonthKey        = errors.New("invalid month key, expected YYYY-MM")
	ErrInvalidDate            = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidBackup          = errors.New("invalid backup document")
)

// Validation constants
const (
	MaxDescriptionLength = 255
)
