package exitcodes

import (
	"errors"

	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

// Exit codes returned by the ox binary.
const (
	// Success indicates successful command completion
	Success = 0

	// GeneralError indicates an unclassified failure, including
	// filesystem errors while installing or rolling back
	GeneralError = 1

	// InvalidArgs indicates invalid command-line arguments or flags
	InvalidArgs = 2

	// PreconditionFailed indicates no release satisfies the request
	// (e.g., tag not found, prerelease not allowed, nothing eligible)
	PreconditionFailed = 3

	// NetworkError indicates network/connectivity failure
	// (e.g., API unreachable, rate limited, bad TLS setup)
	NetworkError = 4

	// ValidationError indicates data that failed validation
	// (e.g., malformed feed, digest mismatch, missing binary)
	ValidationError = 6
)

// CodeForKind maps a self-update error kind to its exit code.
func CodeForKind(kind update.Kind) int {
	switch kind {
	case update.KindNetwork, update.KindAPIMessage, update.KindTLSConfig:
		return NetworkError
	case update.KindNoValidRelease, update.KindReleaseNotFound, update.KindPrereleaseNotAllowed:
		return PreconditionFailed
	case update.KindJSON, update.KindMissingField, update.KindVersionParse,
		update.KindInvalidDigest, update.KindDigestMismatch,
		update.KindMissingDownloadURL, update.KindMissingBinaryInArchive:
		return ValidationError
	default:
		return GeneralError
	}
}

// CodeForError returns the exit code for err. An explicit ErrorWithCode
// anywhere in the chain wins, then a self-update error kind, otherwise
// GeneralError.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}

	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}

	var ue *update.Error
	if errors.As(err, &ue) {
		return CodeForKind(ue.Kind)
	}

	return GeneralError
}
