package password

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Decoy burns one verification against a throwaway hash built with the same
// Params as real accounts. A login for an email with no account then costs
// what a wrong password costs.
type Decoy struct {
	params Params
	once   sync.Once
	hash   string
}

func NewDecoy(p Params) *Decoy {
	return &Decoy{params: p}
}

// Verify always reports false. The hash is built on first use.
func (d *Decoy) Verify(plain string) bool {
	d.once.Do(func() {
		secret := make([]byte, 32)
		_, _ = rand.Read(secret)
		// a failed Hash leaves d.hash empty and Verify below still fails
		d.hash, _ = Hash(d.params, hex.EncodeToString(secret))
	})
	_ = Verify(plain, d.hash)
	return false
}
