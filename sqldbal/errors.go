package sqldbal

import (
	apperrors "github.com/somnisoft/sqldbal/errors"
)

// statusCode maps a Status to the ambient error taxonomy's Code, so a
// caller embedding sqldbal in a service can surface a failure as an
// HTTP status or gRPC status without reimplementing the mapping.
func statusCode(s Status) apperrors.Code {
	switch s {
	case StatusOK:
		return apperrors.CodeInternal // never surfaced; callers only convert non-OK statuses
	case StatusInvalidParameter:
		return apperrors.CodeInvalidArgument
	case StatusOutOfMemory:
		return apperrors.CodeUnavailable
	case StatusOverflow:
		return apperrors.CodeInvalidArgument
	case StatusExecFailed, StatusFetchFailed:
		return apperrors.CodeDatabase
	case StatusPrepareFailed, StatusBindFailed, StatusCoerceFailed:
		return apperrors.CodeInvalidArgument
	case StatusDriverNotSupported:
		return apperrors.CodeUnimplemented
	case StatusOpenFailed:
		return apperrors.CodeUnavailable
	case StatusCloseFailed:
		return apperrors.CodeDatabase
	default:
		return apperrors.CodeInternal
	}
}

// AsError wraps the Connection's current status and error string into
// an *errors.Error from the ambient error-handling package. It is an
// opt-in bridge for callers who want an idiomatic Go error at their
// boundary; the core API never returns one itself, since the status
// must be read via StatusGet/ErrStr per the handle-oriented contract.
func (c *Connection) AsError() error {
	if c.status == StatusOK {
		return nil
	}
	return apperrors.New(statusCode(c.status), c.errString).
		WithDetail("driver", c.tag.String()).
		WithDetail("status", c.status.String())
}
