// Package cryptox hashes and verifies user passwords with Argon2id. Hashes
// are stored in the PHC string format so parameters can change without
// invalidating existing records:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultTime    = 1
	DefaultMemory  = 64 * 1024
	DefaultThreads = 4
	DefaultKeyLen  = 32
	DefaultSaltLen = 16
)

var (
	ErrInvalidHash         = errors.New("phc: invalid format")
	ErrIncompatibleVersion = errors.New("phc: incompatible argon2 version")
)

// PasswordHasher turns plaintext passwords into storable hashes and back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Argon2Hasher is the production PasswordHasher.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen uint32
}

// Option tunes Argon2Hasher parameters. Zero values are ignored.
type Option func(*Argon2Hasher)

func WithTime(t uint32) Option {
	return func(h *Argon2Hasher) {
		if t > 0 {
			h.time = t
		}
	}
}

// WithMemory sets memory in KiB.
func WithMemory(m uint32) Option {
	return func(h *Argon2Hasher) {
		if m > 0 {
			h.memory = m
		}
	}
}

func WithThreads(p uint8) Option {
	return func(h *Argon2Hasher) {
		if p > 0 {
			h.threads = p
		}
	}
}

func NewArgon2Hasher(opts ...Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:    DefaultTime,
		memory:  DefaultMemory,
		threads: DefaultThreads,
		keyLen:  DefaultKeyLen,
		saltLen: DefaultSaltLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash derives a key from password with a fresh random salt and encodes
// the result in PHC format.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives the key with the parameters recorded in encoded and
// compares in constant time. A malformed hash is an error, a mismatch is not.
func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	p, salt, key, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

type phcParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

func decodePHC(encoded string) (phcParams, []byte, []byte, error) {
	var p phcParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", ErrInvalidHash)
	}

	return p, salt, key, nil
}
