package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKeyBcrypt(t *testing.T) {
	hash, err := HashKeyBcrypt("gateway-key")
	require.NoError(t, err)
	assert.NotEqual(t, "gateway-key", hash)

	assert.NoError(t, CompareKeyBcrypt(hash, "gateway-key"))
	assert.Error(t, CompareKeyBcrypt(hash, "other-key"))
	assert.Error(t, CompareKeyBcrypt("", "gateway-key"))

	_, err = HashKeyBcrypt("")
	assert.Error(t, err)
}
