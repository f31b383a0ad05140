package random

import (
	"crypto/rand"
	"encoding/binary"
	"github.com/myrjola/whodunit/internal/errors"
	"math/big"
	mathrand "math/rand/v2"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n cryptographically random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	upperBound := big.NewInt(int64(len(allowedLetters)))
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, upperBound)
		if err != nil {
			return "", errors.Wrap(err, "draw random letter")
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// NewRand returns a pseudo-random generator seeded from the operating system's entropy source.
//
// Scenario generation takes a *mathrand.Rand so that tests can pass a fixed seed with [NewSeededRand].
func NewRand() (*mathrand.Rand, error) {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, errors.Wrap(err, "read random seed")
	}
	return NewSeededRand(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])), nil
}

// NewSeededRand returns a deterministic pseudo-random generator.
func NewSeededRand(seed1, seed2 uint64) *mathrand.Rand {
	return mathrand.New(mathrand.NewPCG(seed1, seed2))
}
