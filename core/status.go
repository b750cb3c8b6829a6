package core

import (
	"errors"
	"fmt"
)

// Code classifies the outcome of an operation. CodeOk is never carried by a
// non-nil error; successful calls return a nil error instead.
type Code int

const (
	CodeOk Code = iota
	CodeNotFound
	CodeCorruption
	CodeNotSupported
	CodeInvalidArgument
	CodeIOError
	CodeMergeInProgress
	CodeIncomplete
	CodeShutdownInProgress
	CodeTimedOut
	CodeAborted
	CodeBusy
	CodeExpired
	CodeTryAgain
)

// SubCode refines a Code with a more specific cause.
type SubCode int

const (
	SubCodeNone SubCode = iota
	SubCodeMutexTimeout
	SubCodeLockTimeout
	SubCodeLockLimit
)

var codeMessages = map[Code]string{
	CodeNotFound:           "NotFound",
	CodeCorruption:         "Corruption",
	CodeNotSupported:       "Not implemented",
	CodeInvalidArgument:    "Invalid argument",
	CodeIOError:            "IO error",
	CodeMergeInProgress:    "Merge in progress",
	CodeIncomplete:         "Result incomplete",
	CodeShutdownInProgress: "Shutdown in progress",
	CodeTimedOut:           "Operation timed out",
	CodeAborted:            "Operation aborted",
	CodeBusy:               "Resource busy",
	CodeExpired:            "Operation expired",
	CodeTryAgain:           "Operation failed. Try again",
}

// Status is the error type used throughout the table layer. It carries a
// Code, an optional SubCode and a human readable message, and participates
// in errors.Is via code matching so callers can test against the package
// sentinels below.
type Status struct {
	code Code
	sub  SubCode
	msg  string
}

// Sentinels for errors.Is checks. They carry no message; Is matches on the
// code alone.
var (
	ErrNotFound           = &Status{code: CodeNotFound}
	ErrCorruption         = &Status{code: CodeCorruption}
	ErrNotSupported       = &Status{code: CodeNotSupported}
	ErrInvalidArgument    = &Status{code: CodeInvalidArgument}
	ErrIOError            = &Status{code: CodeIOError}
	ErrMergeInProgress    = &Status{code: CodeMergeInProgress}
	ErrIncomplete         = &Status{code: CodeIncomplete}
	ErrShutdownInProgress = &Status{code: CodeShutdownInProgress}
	ErrTimedOut           = &Status{code: CodeTimedOut}
	ErrAborted            = &Status{code: CodeAborted}
	ErrBusy               = &Status{code: CodeBusy}
	ErrExpired            = &Status{code: CodeExpired}
	ErrTryAgain           = &Status{code: CodeTryAgain}
)

func (s *Status) Error() string {
	prefix, ok := codeMessages[s.code]
	if !ok {
		prefix = fmt.Sprintf("Unknown code(%d)", int(s.code))
	}
	if s.msg == "" {
		return prefix
	}
	return prefix + ": " + s.msg
}

// Code returns the status code.
func (s *Status) Code() Code { return s.code }

// SubCode returns the refined cause, SubCodeNone if absent.
func (s *Status) SubCode() SubCode { return s.sub }

// Message returns the human readable part of the status.
func (s *Status) Message() string { return s.msg }

// Is reports whether target is a *Status with the same code. A sentinel
// (empty message, SubCodeNone) matches any status of its code.
func (s *Status) Is(target error) bool {
	t, ok := target.(*Status)
	if !ok {
		return false
	}
	if t.code != s.code {
		return false
	}
	if t.sub != SubCodeNone && t.sub != s.sub {
		return false
	}
	return t.msg == "" || t.msg == s.msg
}

// NewStatus builds a status with an explicit code and formatted message.
func NewStatus(code Code, format string, args ...interface{}) *Status {
	return &Status{code: code, msg: fmt.Sprintf(format, args...)}
}

// WithSubCode returns a copy of s carrying the given sub-code.
func (s *Status) WithSubCode(sub SubCode) *Status {
	return &Status{code: s.code, sub: sub, msg: s.msg}
}

func NotFoundf(format string, args ...interface{}) *Status {
	return NewStatus(CodeNotFound, format, args...)
}

func Corruptionf(format string, args ...interface{}) *Status {
	return NewStatus(CodeCorruption, format, args...)
}

func NotSupportedf(format string, args ...interface{}) *Status {
	return NewStatus(CodeNotSupported, format, args...)
}

func InvalidArgumentf(format string, args ...interface{}) *Status {
	return NewStatus(CodeInvalidArgument, format, args...)
}

func IOErrorf(format string, args ...interface{}) *Status {
	return NewStatus(CodeIOError, format, args...)
}

func Incompletef(format string, args ...interface{}) *Status {
	return NewStatus(CodeIncomplete, format, args...)
}

// IsNotFound reports whether err (or any error it wraps) is a NotFound status.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsCorruption reports whether err is a Corruption status.
func IsCorruption(err error) bool { return errors.Is(err, ErrCorruption) }

// IsInvalidArgument reports whether err is an InvalidArgument status.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsIOError reports whether err is an IOError status.
func IsIOError(err error) bool { return errors.Is(err, ErrIOError) }

// IsNotSupported reports whether err is a NotSupported status.
func IsNotSupported(err error) bool { return errors.Is(err, ErrNotSupported) }
