package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrTitleRequired    = errors.New("recipe title is required")
	ErrTitleTooLong     = errors.New("recipe title must not exceed 200 characters")
	ErrNegativeDuration = errors.New("prep and cook time must not be negative")
	ErrDurationTooLong  = errors.New("prep and cook time must not exceed 100000 minutes")

	// Lookup errors
	ErrRecipeNotFound = errors.New("recipe not found")

	// Permission errors
	ErrNotRecipeOwner = errors.New("only recipe owner can perform this action")
)
