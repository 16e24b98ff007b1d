package errors

import (
	stderrors "errors"

	"rewardledger/jsonx"
)

// LedgerErrorCode represents standardized error codes for ledger operations
type LedgerErrorCode string

const (
	// General errors
	ErrCodeInternal LedgerErrorCode = "internal_error"

	// Authorization errors
	ErrCodeUnauthorized LedgerErrorCode = "unauthorized"

	// Accounting errors
	ErrCodeUnderflow        LedgerErrorCode = "underflow"
	ErrCodeOverflow         LedgerErrorCode = "overflow"
	ErrCodeInvalidAccount   LedgerErrorCode = "invalid_account"
	ErrCodeNoOp             LedgerErrorCode = "no_op"
	ErrCodeStaleAccumulator LedgerErrorCode = "stale_accumulator"
)

// LedgerError represents a standardized ledger error
type LedgerError struct {
	Code    LedgerErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	err, _ := jsonx.Marshal(LedgerError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgUnauthorized     = "Caller is not authorized for this operation"
	ErrMsgUnderflow        = "Debit exceeds the computed balance"
	ErrMsgOverflow         = "Value exceeds the 128-bit storage bound"
	ErrMsgInvalidAccount   = "A real depositor account is required"
	ErrMsgNoOp             = "Call would not change any state"
	ErrMsgStaleAccumulator = "Transfer attempted in the same block as an accumulator update"
	ErrMsgInternal         = "Internal ledger error"
)

// NewError creates a new LedgerError and returns it as error interface
func NewError(code LedgerErrorCode, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// CodeOf extracts the ledger error code from err, or ErrCodeInternal for
// errors raised outside the ledger core.
func CodeOf(err error) LedgerErrorCode {
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given ledger error code.
func IsCode(err error, code LedgerErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
