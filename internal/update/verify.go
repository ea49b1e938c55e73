package update

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	digestPrefix   = "sha256:"
	hashBufferSize = 8192
)

// ParseDigest validates a "sha256:<64 hex>" digest and returns the hex
// part in lowercase.
func ParseDigest(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	rest, ok := strings.CutPrefix(trimmed, digestPrefix)
	if !ok {
		return "", newError(KindInvalidDigest, raw, nil)
	}
	rest = strings.TrimSpace(rest)
	if len(rest) != sha256.Size*2 {
		return "", newError(KindInvalidDigest, raw, nil)
	}
	if _, err := hex.DecodeString(rest); err != nil {
		return "", newError(KindInvalidDigest, raw, nil)
	}
	return strings.ToLower(rest), nil
}

// ComputeSHA256 hashes the file at path in fixed-size chunks and returns
// lowercase hex.
func ComputeSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioError("open for hashing", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	// Hide File.WriteTo so CopyBuffer really uses the fixed buffer.
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, make([]byte, hashBufferSize)); err != nil {
		return "", ioError("hash file", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyDigest checks the file at path against rawDigest. An empty
// rawDigest is rejected rather than skipped.
func VerifyDigest(path, rawDigest string) error {
	if strings.TrimSpace(rawDigest) == "" {
		return newError(KindInvalidDigest, "missing digest", nil)
	}
	expected, err := ParseDigest(rawDigest)
	if err != nil {
		return err
	}
	actual, err := ComputeSHA256(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return newError(KindDigestMismatch, fmt.Sprintf("expected %s, got %s", expected, actual), nil)
	}
	return nil
}
