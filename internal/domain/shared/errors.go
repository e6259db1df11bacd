package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes specific to the financial engine
const (
	CodeInvalidPlanConfiguration = "INVALID_PLAN_CONFIGURATION"
	CodeMissingInput             = "MISSING_INPUT"
	CodeIneligibleSource         = "INELIGIBLE_SOURCE"
	CodeOverpayment              = "OVERPAYMENT"
	CodeConsistencyError         = "CONSISTENCY_ERROR"
)

// NewInvalidPlanConfigurationError reports a malformed commission plan
// (bad tier bands, out-of-range rates, missing type-specific fields)
func NewInvalidPlanConfigurationError(message string) *DomainError {
	return NewDomainError(CodeInvalidPlanConfiguration, message)
}

// NewMissingInputError reports a required evaluation input that was not supplied
func NewMissingInputError(message string) *DomainError {
	return NewDomainError(CodeMissingInput, message)
}

// NewIneligibleSourceError reports an attempt to bill or credit revenue from a
// source document that is not in an eligible state
func NewIneligibleSourceError(message string) *DomainError {
	return NewDomainError(CodeIneligibleSource, message)
}

// NewOverpaymentError reports payments that would exceed the amount owed
func NewOverpaymentError(message string) *DomainError {
	return NewDomainError(CodeOverpayment, message)
}

// NewConsistencyError reports a derived financial figure that does not match its
// components on read. This indicates a bypassed write path.
func NewConsistencyError(message string) *DomainError {
	return NewDomainError(CodeConsistencyError, message)
}
