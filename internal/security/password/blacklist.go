package password

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist is a read-only set of forbidden passwords, compared case-insensitively.
// It is built once at startup and never mutated, so lookups need no lock.
type Blacklist struct {
	data map[string]struct{}
}

// LoadBlacklist reads one password per line. Blank lines and # comments are
// skipped. An empty path yields an empty list.
func LoadBlacklist(path string) (*Blacklist, error) {
	if strings.TrimSpace(path) == "" {
		return &Blacklist{data: map[string]struct{}{}}, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBlacklist(f)
}

// ReadBlacklist parses a list from r.
func ReadBlacklist(r io.Reader) (*Blacklist, error) {
	bl := &Blacklist{data: map[string]struct{}{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.ToLower(strings.TrimSpace(sc.Text()))
		if s != "" && !strings.HasPrefix(s, "#") {
			bl.data[s] = struct{}{}
		}
	}
	return bl, sc.Err()
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}

func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}
