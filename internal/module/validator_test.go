package module_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"modkit/internal/module"
)

func TestNumericValidators(t *testing.T) {
	assert.True(t, module.Positive(1))
	assert.True(t, module.Positive(0.5))
	assert.False(t, module.Positive(0))
	assert.False(t, module.Positive("1"))

	assert.True(t, module.NonNegative(0))
	assert.False(t, module.NonNegative(-1))

	assert.True(t, module.PortNumber(1))
	assert.True(t, module.PortNumber(65535))
	assert.False(t, module.PortNumber(0))
	assert.False(t, module.PortNumber(65536))
	assert.False(t, module.PortNumber(80.5))

	inRange := module.InRange(1, 10)
	assert.True(t, inRange(1))
	assert.True(t, inRange(10))
	assert.False(t, inRange(11))
}

func TestOneOf(t *testing.T) {
	v := module.OneOf("json", "text")
	assert.True(t, v("json"))
	assert.False(t, v("xml"))
	assert.False(t, v(nil))
}

func TestMatches(t *testing.T) {
	v := module.Matches(`^[a-z]+$`)
	assert.True(t, v("hello"))
	assert.False(t, v("Hello1"))
	assert.False(t, v(42))

	broken := module.Matches(`([`)
	assert.False(t, broken("anything"))
}

func TestNetworkValidators(t *testing.T) {
	assert.True(t, module.IPAddress("192.168.1.1"))
	assert.True(t, module.IPAddress("::1"))
	assert.False(t, module.IPAddress("999.1.1.1"))
	assert.False(t, module.IPAddress("host.example.org"))

	assert.True(t, module.Hostname("host.example.org"))
	assert.True(t, module.Hostname("localhost"))
	assert.False(t, module.Hostname("-bad-"))
	assert.False(t, module.Hostname("under score"))

	assert.True(t, module.Email("user@example.org"))
	assert.False(t, module.Email("not-an-email"))

	assert.True(t, module.URL("https://example.org/path?q=1"))
	assert.True(t, module.URL("http://example.org:8080"))
	assert.False(t, module.URL("ftp://example.org"))
	assert.False(t, module.URL("example.org"))
}

func TestLength(t *testing.T) {
	v := module.Length(2, 4)
	assert.False(t, v("a"))
	assert.True(t, v("ab"))
	assert.True(t, v("abcd"))
	assert.False(t, v("abcde"))

	unbounded := module.Length(1, -1)
	assert.True(t, unbounded("very long string is fine"))
	assert.False(t, unbounded(""))
	assert.False(t, unbounded(12))
}
