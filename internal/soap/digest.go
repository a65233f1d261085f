package soap

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// nonceAlphabet is the character set for security-token nonces.
// All characters are valid base64 alphabet members, so a 32-character
// nonce always base64-decodes cleanly.
const nonceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// nonceLength is the fixed nonce length in characters.
const nonceLength = 32

// createdFormat is the WS-UsernameToken Created timestamp layout
// (UTC, second precision, literal Z suffix).
const createdFormat = "2006-01-02T15:04:05Z"

// Digest is a one-time WS-UsernameToken password proof. A fresh Digest is
// built for every authenticated call and never reused.
type Digest struct {
	// Nonce as generated, un-decoded.
	Nonce string
	// Created is the UTC timestamp the digest was computed at.
	Created string
	// Username the digest authenticates.
	Username string
	// PasswordDigest is base64(SHA1(base64decode(nonce) ++ created ++ password)).
	PasswordDigest string
}

// BuildDigest computes a fresh security-token digest for the given
// account. An error means the digest could not be constructed and the
// calling request must not proceed as authenticated.
func BuildDigest(username, password string) (*Digest, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	created := time.Now().UTC().Format(createdFormat)

	decodedNonce, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	h := sha1.New()
	h.Write(decodedNonce)
	h.Write([]byte(created))
	h.Write([]byte(password))

	digest := strings.TrimSpace(base64.StdEncoding.EncodeToString(h.Sum(nil)))

	return &Digest{
		Nonce:          nonce,
		Created:        created,
		Username:       username,
		PasswordDigest: digest,
	}, nil
}

// newNonce returns a 32-character nonce drawn from nonceAlphabet using a
// cryptographically secure source.
func newNonce() (string, error) {
	buf := make([]byte, nonceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = nonceAlphabet[int(b)%len(nonceAlphabet)]
	}
	return string(buf), nil
}
