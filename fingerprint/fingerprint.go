// Package fingerprint computes stable content identifiers for files,
// streams, strings, and structured values.
//
// Every entry point applies the same digest algorithm, so a fingerprint
// recorded for "the same logical content" always agrees no matter which
// shape the content arrived in. Fingerprints are rendered as uppercase
// hexadecimal with no separators.
package fingerprint

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Algorithm is the digest algorithm applied by every entry point.
const Algorithm = digest.SHA256

// HexLength is the length of a rendered fingerprint in characters.
const HexLength = 64

// File fingerprints the contents of the file at path. The file is opened
// read-only and closed before returning, on failure included.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()

	fp, err := Reader(f)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fp, nil
}

// Reader fingerprints everything remaining in r.
//
// A fresh digester is constructed per call and discarded afterwards;
// digesters are streaming-stateful and must never be shared or reused
// across inputs.
func Reader(r io.Reader) (string, error) {
	d := Algorithm.Digester()
	if _, err := io.Copy(d.Hash(), r); err != nil {
		return "", err
	}
	return render(d.Digest()), nil
}

// Bytes fingerprints a byte slice.
func Bytes(b []byte) string {
	return render(Algorithm.FromBytes(b))
}

// String fingerprints the UTF-8 bytes of s.
func String(s string) string {
	return Bytes([]byte(s))
}

// Value fingerprints an arbitrary structured value by serializing it into
// a canonical byte form first. Structurally equal values produce the same
// fingerprint regardless of how they were constructed; see canonicalBytes.
func Value(v any) (string, error) {
	b, err := canonicalBytes(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint value: %w", err)
	}
	return Bytes(b), nil
}

func render(d digest.Digest) string {
	return strings.ToUpper(d.Encoded())
}
