package auth

import (
	"bufio"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	verifierLength = 128
	stateBytes     = 16

	verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_.-~"
)

// GenerateVerifier returns a 128 character PKCE code verifier drawn uniformly from the unreserved alphabet.
func GenerateVerifier() (string, error) {
	return verifierFrom(rand.Reader)
}

// verifierFrom rejection-samples the top 7 bits of each byte so every symbol is equally likely.
func verifierFrom(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	out := make([]byte, 0, verifierLength)

	for len(out) < verifierLength {
		b, err := br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		if idx := int(b >> 1); idx < len(verifierAlphabet) {
			out = append(out, verifierAlphabet[idx])
		}
	}

	return string(out), nil
}

// DeriveChallenge computes the S256 code challenge for verifier.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns an unguessable CSRF token for one authorization attempt.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
