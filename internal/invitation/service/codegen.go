package service

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// codeGenerator draws codes uniformly from an alphabet using a
// cryptographically secure source.
type codeGenerator struct {
	alphabet []rune
	max      *big.Int
	entropy  io.Reader
}

func newCodeGenerator(alphabet string, entropy io.Reader) (*codeGenerator, error) {
	runes := []rune(alphabet)
	if len(runes) < 2 {
		return nil, errors.New("code alphabet needs at least two characters")
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &codeGenerator{
		alphabet: runes,
		max:      big.NewInt(int64(len(runes))),
		entropy:  entropy,
	}, nil
}

func (g *codeGenerator) Next(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}
	out := make([]rune, length)
	for i := range out {
		n, err := rand.Int(g.entropy, g.max)
		if err != nil {
			return "", err
		}
		out[i] = g.alphabet[n.Int64()]
	}
	return string(out), nil
}
