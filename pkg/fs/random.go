package fs

import (
	"fmt"

	"github.com/hashicorp/go-uuid"
)

const alphaNumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxUnbiased is the largest multiple of len(alphaNumeric) that fits in a
// byte. Bytes at or above it are drawn again.
const maxUnbiased = 256 - 256%len(alphaNumeric)

func randomAlphaNumeric(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid name length %d", n)
	}

	name := make([]byte, 0, n)
	for len(name) < n {
		b, err := uuid.GenerateRandomBytes(n - len(name))
		if err != nil {
			return "", err
		}

		name = appendAlphaNumeric(name, b)
	}

	return string(name), nil
}

func appendAlphaNumeric(name, b []byte) []byte {
	for _, c := range b {
		if int(c) >= maxUnbiased {
			continue
		}
		name = append(name, alphaNumeric[int(c)%len(alphaNumeric)])
	}

	return name
}
