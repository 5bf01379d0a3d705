package paceline

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsRotate(t *testing.T) {
	creds := NewCredentials("primary", "backup-a", "backup-b")
	assert.Equal(t, "primary", creds.Current())

	// Rotation never reselects the current key.
	for i := 0; i < 50; i++ {
		before := creds.Current()
		after := creds.Rotate()
		assert.NotEqual(t, before, after)
	}
}

func TestCredentialsRotateReturnsToFormerKeys(t *testing.T) {
	creds := NewCredentials("primary", "backup")

	// With exactly two keys, rotation ping-pongs: no key is ever removed
	// from the set, only reselected.
	assert.Equal(t, "backup", creds.Rotate())
	assert.Equal(t, "primary", creds.Rotate())
	assert.Equal(t, "backup", creds.Rotate())
}

func TestCredentialsRotateSingleKey(t *testing.T) {
	creds := NewCredentials("only")
	assert.Equal(t, "only", creds.Rotate())
	assert.Equal(t, "only", creds.Current())
}

func TestCredentialsRotateDuplicateKeys(t *testing.T) {
	// A backup equal to the current key is not a rotation target.
	creds := NewCredentials("key", "key")
	assert.Equal(t, "key", creds.Rotate())
}

func TestAuthFuncs(t *testing.T) {
	headers := http.Header{}
	BearerAuth()("secret", headers)
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))

	headers = http.Header{}
	HeaderAuth("X-Api-Key")("secret", headers)
	assert.Equal(t, "secret", headers.Get("X-Api-Key"))
}
