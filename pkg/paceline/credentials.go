package paceline

import (
	"math/rand"
	"net/http"
)

// AuthFunc injects a credential into the headers of an outgoing request.
type AuthFunc func(key string, headers http.Header)

// BearerAuth returns an AuthFunc setting a standard Bearer Authorization
// header.
func BearerAuth() AuthFunc {
	return func(key string, headers http.Header) {
		headers.Set("Authorization", "Bearer "+key)
	}
}

// HeaderAuth returns an AuthFunc placing the credential in an arbitrary
// header, for providers that do not use the Authorization scheme.
func HeaderAuth(name string) AuthFunc {
	return func(key string, headers http.Header) {
		headers.Set(name, key)
	}
}

// Credentials holds an active API key and its backups. When a quota-exhausted
// response comes back, the throttler rotates to a different key before the
// next attempt. Keys are never removed from the set, only reselected.
type Credentials struct {
	keys    []string
	current int
	pick    func(n int) int
}

// NewCredentials creates a credential set with primary active and any number
// of backups.
func NewCredentials(primary string, backups ...string) *Credentials {
	keys := append([]string{primary}, backups...)
	return &Credentials{
		keys: keys,
		pick: rand.Intn,
	}
}

// Current returns the active key.
func (c *Credentials) Current() string {
	return c.keys[c.current]
}

// Rotate selects a new active key uniformly at random from the keys other
// than the current one. With no other keys it is a no-op.
func (c *Credentials) Rotate() string {
	candidates := make([]int, 0, len(c.keys)-1)
	for i, key := range c.keys {
		if i != c.current && key != c.keys[c.current] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) > 0 {
		c.current = candidates[c.pick(len(candidates))]
	}
	return c.Current()
}
