package service

import "errors"

var (
	ErrForbidden       = errors.New("operation requires a privileged session")
	ErrUnauthenticated = errors.New("operation requires a signed-in session")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidReview   = errors.New("invalid review")
	ErrReviewNotFound  = errors.New("review not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("invalid checkout request")
	ErrCartUnavailable = errors.New("cart storage unavailable")
)
