package password

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes is bcrypt's input limit. It counts bytes, not runes.
const MaxBytes = 72

var ErrTooLong = errors.New("password exceeds 72 bytes")

// Cost is the bcrypt work factor. DefaultCost keeps a verification in the tens of milliseconds.
var Cost = bcrypt.DefaultCost

var (
	dummyMu   sync.Mutex
	dummyHash []byte
)

func Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxBytes {
		return "", ErrTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is an error, a mismatch is not.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, err
}

// VerifyNone spends the same bcrypt work as Verify against a hash that matches nothing.
// Callers use it when no account exists so response time does not reveal that.
func VerifyNone(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(currentDummyHash(), []byte(plaintext))
}

func currentDummyHash() []byte {
	dummyMu.Lock()
	defer dummyMu.Unlock()

	if dummyHash != nil {
		if cost, err := bcrypt.Cost(dummyHash); err == nil && cost == Cost {
			return dummyHash
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("portal-service/no-such-account"), Cost)
	if err != nil {
		// Cost out of range; Compare still rejects, only without the delay
		return nil
	}
	dummyHash = hashed
	return dummyHash
}
