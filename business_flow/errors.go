// Package businessflow contains the core business logic and use cases of the contract management system
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Authentication errors
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrUnauthenticated        = errors.New("authentication required")
	ErrInactiveOrUnknownUser  = errors.New("user not found or inactive")
	ErrForbidden              = errors.New("insufficient permissions")
	ErrCapabilityNotSupported = errors.New("unknown operation")

	// User errors
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidRole           = errors.New("invalid role")
	ErrCannotDeleteSelf      = errors.New("cannot deactivate your own account")

	// Client errors
	ErrClientNotFound           = errors.New("client not found")
	ErrClientEmailAlreadyExists = errors.New("client email already exists")
	ErrCNPJAlreadyExists        = errors.New("cnpj already exists")
	ErrClientHasOpenContracts   = errors.New("client has draft or active contracts")

	// Reference data errors
	ErrProgramNotFound  = errors.New("radio program not found")
	ErrAdTypeNotFound   = errors.New("ad type not found")
	ErrInvalidReference = errors.New("referenced record does not exist or is inactive")

	// Contract errors
	ErrContractNotFound     = errors.New("contract not found")
	ErrInvalidContractState = errors.New("operation not allowed in the current contract status")
	ErrContractNotEnded     = errors.New("contract end date has not been reached")
	ErrInvalidDateRange     = errors.New("end date must be after start date")
	ErrInvalidDate          = errors.New("date must use the YYYY-MM-DD format")
	ErrInvalidTotalSpots    = errors.New("total spots must be at least 1")
	ErrInvalidPricePerSpot  = errors.New("price per spot cannot be negative")
	ErrDiscountOutOfRange   = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// Generic errors
	ErrNoFieldsToUpdate = errors.New("at least one field must be provided for update")
)

// validationErrors are input problems reported to the caller as 400
var validationErrors = []error{
	ErrInvalidRole,
	ErrCannotDeleteSelf,
	ErrClientHasOpenContracts,
	ErrInvalidDateRange,
	ErrInvalidDate,
	ErrInvalidTotalSpots,
	ErrInvalidPricePerSpot,
	ErrDiscountOutOfRange,
	ErrInvalidStatus,
	ErrInvalidPaymentStatus,
	ErrNoFieldsToUpdate,
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsInactiveOrUnknownUser(err error) bool {
	return errors.Is(err, ErrInactiveOrUnknownUser)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrInvalidReference)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists) ||
		errors.Is(err, ErrEmailAlreadyExists) ||
		errors.Is(err, ErrClientEmailAlreadyExists) ||
		errors.Is(err, ErrCNPJAlreadyExists)
}

func IsInvalidContractState(err error) bool {
	return errors.Is(err, ErrInvalidContractState) || errors.Is(err, ErrContractNotEnded)
}

// IsValidation reports whether err is a caller input problem
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// BusinessErrorCode returns the code of the outermost BusinessError in the chain
func BusinessErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
