package domain

import "github.com/pkg/errors"

var (
	// ErrValidation marks caller errors: negative quantities, unknown asset
	// classes, non-finite numbers. Never coerced silently.
	ErrValidation = errors.New("validation error")

	// ErrUnknownPortfolio marks operations referencing a portfolio that was
	// never registered.
	ErrUnknownPortfolio = errors.New("unknown portfolio")

	// ErrPortfolioExists marks an attempt to register an already registered
	// portfolio identifier.
	ErrPortfolioExists = errors.New("portfolio already registered")

	// ErrConfiguration marks construction-time configuration defects:
	// limit/weight/tier tables not covering the asset class set, or tier
	// boundaries out of order.
	ErrConfiguration = errors.New("invalid engine configuration")
)
