package eip191

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/drophub/airdrop/lib/errors"
)

// prefixFormat is the EIP-191 personal-sign domain separation prefix applied
// to messages before hashing.
const prefixFormat = "\x19Ethereum Signed Message:\n%d%s"

// signatureLength is the length in bytes of a [R || S || V] signature.
const signatureLength = 65

// hash computes the keccak256 hash of the message prefixed per EIP-191.
func hash(
	message string,
) common.Hash {
	return crypto.Keccak256Hash(
		[]byte(fmt.Sprintf(prefixFormat, len(message), message)))
}

// RecoverAddress recovers the address that personal-signed message, given the
// hex encoded [R || S || V] signature produced by a wallet. Both the 0/1 and
// 27/28 V conventions are accepted.
func RecoverAddress(
	message string,
	signature string,
) (*common.Address, error) {
	sig := common.FromHex(signature)
	if len(sig) != signatureLength {
		return nil, errors.Trace(errors.Newf(
			"Invalid signature length: %d", len(sig)))
	}

	s := make([]byte, signatureLength)
	copy(s, sig)
	if s[64] >= 27 {
		s[64] -= 27
	}
	if s[64] != 0 && s[64] != 1 {
		return nil, errors.Trace(errors.Newf(
			"Invalid signature recovery id: %d", sig[64]))
	}

	pub, err := crypto.SigToPub(hash(message).Bytes(), s)
	if err != nil {
		return nil, errors.Trace(err)
	}
	address := crypto.PubkeyToAddress(*pub)

	return &address, nil
}

// Sign personal-signs the message with the provided key, returning the hex
// encoded [R || S || V] signature with the 27/28 V convention wallets use.
func Sign(
	message string,
	key *ecdsa.PrivateKey,
) (string, error) {
	sig, err := crypto.Sign(hash(message).Bytes(), key)
	if err != nil {
		return "", errors.Trace(err)
	}
	sig[64] += 27

	return hexutil.Encode(sig), nil
}
