package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	assert.Equal(t, "", Redact(""))
	assert.Equal(t, "****", Redact("XyZ9"))
	assert.Equal(t, "ab****yz", Redact("abcdwxyz"))
}
