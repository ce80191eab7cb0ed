package eip191

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestSignRecoverRoundtrip(
	t *testing.T,
) {
	key, err := crypto.GenerateKey()
	assert.Nil(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	message := "Airdrop registration\nTimestamp: 2025-01-01T12:00:00.000Z"
	signature, err := Sign(message, key)
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(signature, "0x"))

	recovered, err := RecoverAddress(message, signature)
	assert.Nil(t, err)
	assert.Equal(t, address, *recovered)
}

func TestRecoverAddressMismatchOnAlteredMessage(
	t *testing.T,
) {
	key, err := crypto.GenerateKey()
	assert.Nil(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	signature, err := Sign("message", key)
	assert.Nil(t, err)

	recovered, err := RecoverAddress("another message", signature)
	assert.Nil(t, err)
	assert.NotEqual(t, address, *recovered)
}

func TestRecoverAddressInvalidSignature(
	t *testing.T,
) {
	_, err := RecoverAddress("message", "0xdeadbeef")
	assert.NotNil(t, err)

	_, err = RecoverAddress("message", "")
	assert.NotNil(t, err)
}
