package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	defaultMemory     = 64 * 1024
	defaultIterations = 3
	defaultThreads    = 1
	defaultSaltLength = 16
	defaultKeyLength  = 32
)

type Argon2idHash struct {
	m    uint32
	t    uint32
	p    uint8
	salt []byte
	sum  []byte
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, defaultSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, defaultIterations, defaultMemory, defaultThreads, defaultKeyLength)
	h := &Argon2idHash{m: defaultMemory, t: defaultIterations, p: defaultThreads, salt: salt, sum: sum}
	return h.String(), nil
}

func ParseArgon2idHash(phc string) (*Argon2idHash, error) {
	parts := strings.Split(strings.TrimSpace(phc), "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errors.New("invalid argon2id hash format")
	}
	if parts[2] != "v=19" {
		return nil, fmt.Errorf("unsupported argon2id version: %s", parts[2])
	}
	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return nil, errors.New("invalid argon2id params")
	}
	var m, t, p uint64
	for _, param := range params {
		kv := strings.SplitN(param, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("invalid argon2id params")
		}
		var err error
		switch kv[0] {
		case "m":
			m, err = strconv.ParseUint(kv[1], 10, 32)
		case "t":
			t, err = strconv.ParseUint(kv[1], 10, 32)
		case "p":
			p, err = strconv.ParseUint(kv[1], 10, 8)
		default:
			return nil, errors.New("invalid argon2id params")
		}
		if err != nil {
			return nil, fmt.Errorf("invalid argon2id param %s", kv[0])
		}
	}
	if m == 0 || t == 0 || p == 0 {
		return nil, errors.New("invalid argon2id params")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid argon2id salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return nil, errors.New("invalid argon2id hash")
	}
	return &Argon2idHash{
		m:    uint32(m),
		t:    uint32(t),
		p:    uint8(p),
		salt: salt,
		sum:  sum,
	}, nil
}

func (h *Argon2idHash) Verify(password string) bool {
	sum := argon2.IDKey([]byte(password), h.salt, h.t, h.m, h.p, uint32(len(h.sum)))
	return subtle.ConstantTimeCompare(sum, h.sum) == 1
}

// String encodes the hash in PHC form, the format kept in the users table.
func (h *Argon2idHash) String() string {
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		h.m,
		h.t,
		h.p,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.sum),
	)
}

// CheckPassword verifies password against a stored PHC string. A malformed
// hash never verifies.
func CheckPassword(phc, password string) bool {
	h, err := ParseArgon2idHash(phc)
	if err != nil {
		return false
	}
	return h.Verify(password)
}

var (
	dummyOnce sync.Once
	dummyHash *Argon2idHash
)

// burnVerify spends the same work as a real verification so unknown
// usernames take as long to reject as wrong passwords.
func burnVerify(password string) {
	dummyOnce.Do(func() {
		phc, err := HashPassword("gmemo-dummy-password")
		if err == nil {
			dummyHash, _ = ParseArgon2idHash(phc)
		}
	})
	if dummyHash != nil {
		_ = dummyHash.Verify(password)
	}
}
