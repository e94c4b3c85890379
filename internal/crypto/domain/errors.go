package domain

import (
	"github.com/allisson/uidoperator/internal/errors"
)

var (
	// ErrUnsupportedAlgorithm indicates a key names an algorithm this service cannot use.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key secret has the wrong length for its algorithm.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates authentication of a ciphertext failed. The cause is never
	// disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
