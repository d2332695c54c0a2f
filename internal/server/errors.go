package server

import (
	"errors"
	"net/http"

	analyticsdomain "github.com/fairpricelabs/fairprice/internal/analytics/domain"
	bannerdomain "github.com/fairpricelabs/fairprice/internal/banner/domain"
	billingdomain "github.com/fairpricelabs/fairprice/internal/billing/domain"
	countrydomain "github.com/fairpricelabs/fairprice/internal/country/domain"
	identitydomain "github.com/fairpricelabs/fairprice/internal/identity/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
)

// apiError pairs an HTTP status with a stable machine-readable code.
type apiError struct {
	status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code + ": " + e.Message }

var (
	ErrUnauthorized = &apiError{http.StatusUnauthorized, "unauthorized", "missing or invalid credentials"}
	errInternal     = &apiError{http.StatusInternalServerError, "internal", "internal server error"}
)

func invalidRequestError(msg string) *apiError {
	return &apiError{http.StatusBadRequest, "invalid_request", msg}
}

// toAPIError maps domain sentinels onto transport errors. Anything
// unrecognized is a 500 with the detail kept out of the response.
func toAPIError(err error) *apiError {
	var api *apiError
	if errors.As(err, &api) {
		return api
	}

	switch {
	case errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, countrydomain.ErrCountryNotFound),
		errors.Is(err, bannerdomain.ErrNoBanner):
		return &apiError{http.StatusNotFound, "not_found", "resource not found"}

	case errors.Is(err, productdomain.ErrQuotaExceeded):
		return &apiError{http.StatusForbidden, "quota_exceeded", "tier product limit reached"}

	case errors.Is(err, productdomain.ErrPermissionDenied):
		return &apiError{http.StatusForbidden, "permission_denied", "tier does not allow this operation"}

	case errors.Is(err, identitydomain.ErrInvalidToken),
		errors.Is(err, identitydomain.ErrTokenExpired):
		return ErrUnauthorized

	case errors.Is(err, identitydomain.ErrInvalidSignature),
		errors.Is(err, identitydomain.ErrStaleTimestamp),
		errors.Is(err, billingdomain.ErrInvalidSignature):
		return &apiError{http.StatusBadRequest, "invalid_signature", "webhook signature verification failed"}

	case errors.Is(err, countrydomain.ErrInvalidPercentage),
		errors.Is(err, analyticsdomain.ErrInvalidInterval),
		errors.Is(err, analyticsdomain.ErrInvalidTimezone),
		errors.Is(err, subscriptiondomain.ErrUnknownTier),
		errors.Is(err, subscriptiondomain.ErrFreeTierCheckout),
		errors.Is(err, subscriptiondomain.ErrNoBillingCustomer):
		return invalidRequestError(err.Error())

	case errors.Is(err, billingdomain.ErrUpstream):
		return &apiError{http.StatusBadGateway, "billing_unavailable", "billing provider unavailable"}
	}

	return errInternal
}
