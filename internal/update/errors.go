package update

import (
	"errors"
	"fmt"
)

// Kind classifies a self-update failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindJSON
	KindVersionParse
	KindAPIMessage
	KindMissingField
	KindNoValidRelease
	KindInvalidDigest
	KindDigestMismatch
	KindMissingDownloadURL
	KindMissingBinaryInArchive
	KindReleaseNotFound
	KindPrereleaseNotAllowed
	KindTLSConfig
	KindIO
)

var kindNames = map[Kind]string{
	KindNetwork:                "http error",
	KindJSON:                   "json error",
	KindVersionParse:           "semver error",
	KindAPIMessage:             "api error",
	KindMissingField:           "missing field",
	KindNoValidRelease:         "no valid releases",
	KindInvalidDigest:          "invalid digest",
	KindDigestMismatch:         "digest mismatch",
	KindMissingDownloadURL:     "missing download url",
	KindMissingBinaryInArchive: "missing binary in archive",
	KindReleaseNotFound:        "release not found",
	KindPrereleaseNotAllowed:   "prerelease not allowed",
	KindTLSConfig:              "tls config error",
	KindIO:                     "io error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is the single error type returned by the self-update pipeline.
// Detail carries the kind's payload (API message, field name, tag, raw
// digest, asset name); Err carries the underlying cause when there is one.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when the target is a bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Detail != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNetwork                = &Error{Kind: KindNetwork}
	ErrJSON                   = &Error{Kind: KindJSON}
	ErrVersionParse           = &Error{Kind: KindVersionParse}
	ErrAPIMessage             = &Error{Kind: KindAPIMessage}
	ErrMissingField           = &Error{Kind: KindMissingField}
	ErrNoValidRelease         = &Error{Kind: KindNoValidRelease}
	ErrInvalidDigest          = &Error{Kind: KindInvalidDigest}
	ErrDigestMismatch         = &Error{Kind: KindDigestMismatch}
	ErrMissingDownloadURL     = &Error{Kind: KindMissingDownloadURL}
	ErrMissingBinaryInArchive = &Error{Kind: KindMissingBinaryInArchive}
	ErrReleaseNotFound        = &Error{Kind: KindReleaseNotFound}
	ErrPrereleaseNotAllowed   = &Error{Kind: KindPrereleaseNotAllowed}
	ErrTLSConfig              = &Error{Kind: KindTLSConfig}
	ErrIO                     = &Error{Kind: KindIO}
)

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindUnknown
}

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func ioError(op string, err error) *Error {
	return &Error{Kind: KindIO, Detail: op, Err: err}
}

func networkError(format string, args ...any) *Error {
	return &Error{Kind: KindNetwork, Detail: fmt.Sprintf(format, args...)}
}
