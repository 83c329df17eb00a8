package errors

import "fmt"

// Sentinels for errors.Is checks. BaseError.Is compares codes, so any
// error carrying the same code matches.
var (
	ErrContract      = New(ContractErrorCode, "contract error")
	ErrSignature     = New(SignatureErrorCode, "signature error")
	ErrNaming        = New(NamingErrorCode, "naming error")
	ErrSynthesis     = New(SynthesisErrorCode, "synthesis error")
	ErrInstantiation = New(InstantiationErrorCode, "instantiation error")
)

// ContractError reports a contract that is structurally unusable: missing
// declaration, absent target type or unsupported shape.
func ContractError(contract, reason string) *BaseError {
	return Newf(ContractErrorCode, "contract %s: %s", contract, reason).
		WithContext("contract", contract)
}

// SignatureError reports an operation whose arity or return type is invalid.
func SignatureError(contract, method, reason string) *BaseError {
	return Newf(SignatureErrorCode, "contract %s: method %s: %s", contract, method, reason).
		WithContext("contract", contract).
		WithContext("method", method)
}

// NamingError reports a method name that cannot be mapped to a property.
func NamingError(method, reason string) *BaseError {
	return Newf(NamingErrorCode, "method %s: %s", method, reason).
		WithContext("method", method)
}

// SynthesisError wraps a backend failure while building a generated type.
func SynthesisError(typeName, stage string, cause error) *BaseError {
	return Wrap(SynthesisErrorCode, fmt.Sprintf("synthesize %s: %s", typeName, stage), cause).
		WithContext("type", typeName).
		WithContext("stage", stage)
}

// InstantiationError wraps a failure to construct a generated type.
func InstantiationError(typeName string, cause error) *BaseError {
	return Wrap(InstantiationErrorCode, fmt.Sprintf("instantiate %s", typeName), cause).
		WithContext("type", typeName)
}
