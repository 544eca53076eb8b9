package errors

// Code represents an error code. The set here is deliberately narrow:
// it covers exactly the outcomes sqldbal's Status values are bridged
// to by statusCode in the sqldbal package (CodeInternal among them,
// which is also what this package's own helpers fall back to when an
// error isn't an *Error at all), plus CodeUnknown, which nothing in
// this module produces.
type Code string

const (
	// CodeInternal is the fallback for an error this package cannot
	// otherwise classify (GetCode on a plain error, an unrecognized
	// Status).
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnknown is reserved for callers that need to distinguish
	// "classification failed" from "classified as internal".
	CodeUnknown Code = "UNKNOWN_ERROR"
	// CodeInvalidArgument covers malformed input: out-of-range bind
	// indexes, bad option keys, a column value that won't coerce to
	// the requested type.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeUnavailable covers a backend session that could not be
	// opened or reserved at all.
	CodeUnavailable Code = "UNAVAILABLE"
	// CodeUnimplemented covers a driver tag or capability this build
	// was not compiled to support.
	CodeUnimplemented Code = "UNIMPLEMENTED"
	// CodeDatabase covers a request that reached a live backend
	// session and failed there: a bad statement, a fetch error, a
	// failed close.
	CodeDatabase Code = "DATABASE_ERROR"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// HTTPStatusCode returns the HTTP status code for the error code
func (c Code) HTTPStatusCode() int {
	switch c {
	case CodeInvalidArgument:
		return 400 // Bad Request
	case CodeUnimplemented:
		return 501 // Not Implemented
	case CodeUnavailable:
		return 503 // Service Unavailable
	case CodeInternal, CodeUnknown, CodeDatabase:
		return 500 // Internal Server Error
	default:
		return 500 // Internal Server Error
	}
}

// IsClientError returns true if the error is a client error (4xx)
func (c Code) IsClientError() bool {
	status := c.HTTPStatusCode()
	return status >= 400 && status < 500
}

// IsServerError returns true if the error is a server error (5xx)
func (c Code) IsServerError() bool {
	status := c.HTTPStatusCode()
	return status >= 500 && status < 600
}

// GRPCCode returns the gRPC status code for the error code.
// Numbering follows google.golang.org/grpc/codes.
func (c Code) GRPCCode() int {
	switch c {
	case CodeInvalidArgument:
		return 3 // InvalidArgument
	case CodeUnimplemented:
		return 12 // Unimplemented
	case CodeUnavailable:
		return 14 // Unavailable
	case CodeInternal, CodeDatabase:
		return 13 // Internal
	case CodeUnknown:
		return 2 // Unknown
	default:
		return 2 // Unknown
	}
}
