package functional

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drophub/airdrop/lib/env"
	"github.com/drophub/airdrop/registrar"
	"github.com/drophub/airdrop/registrar/test"
)

func airdropMessage(
	timestamp time.Time,
) string {
	return fmt.Sprintf(
		"Sign this message to register for the airdrop.\nTimestamp: %s",
		timestamp.UTC().Format(time.RFC3339))
}

func TestRegisterAirdropSimple(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now())
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
		"source":    "landing_page",
	})

	assert.Equal(t, 200, status)

	var ok bool
	err := raw.Extract("ok", &ok)
	assert.Nil(t, err)
	assert.True(t, ok)

	var registered registrar.RegistrationResource
	err = raw.Extract("registered", &registered)
	assert.Nil(t, err)

	assert.Regexp(t, "^registration_", registered.ID)
	assert.Equal(t, strings.ToLower(w.Address.Hex()), registered.Address)
	assert.Equal(t, "ethereum", registered.Chain)
	assert.Equal(t, "landing_page", registered.Source)
	assert.Equal(t, message, registered.Message)
	assert.NotZero(t, registered.VerifiedAt)
}

func TestRegisterAirdropMissingFields(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now())
	signature := w.Sign(t, message)

	for _, body := range []map[string]interface{}{
		{},
		{"signature": signature, "message": message},
		{"address": w.Address.Hex(), "message": message},
		{"address": w.Address.Hex(), "signature": signature},
	} {
		status, raw := m.Post(t, "/api/airdrop", body)

		assert.Equal(t, 400, status)

		var code string
		err := raw.Extract("code", &code)
		assert.Nil(t, err)
		assert.Equal(t, "fields_missing", code)
	}

	// Nothing was persisted: a valid registration for the same address is
	// created, not reported as a duplicate.
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": signature,
		"message":   message,
	})
	assert.Equal(t, 200, status)
	_, found := raw["message"]
	assert.False(t, found)
}

func TestRegisterAirdropInvalidAddress(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now())
	signature := w.Sign(t, message)

	for _, address := range []string{
		"0x1234",
		"not_an_address",
		"0xZZ08400098527886E0F7030069857D2E4169EE00",
		w.Address.Hex() + "ff",
	} {
		status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
			"address":   address,
			"signature": signature,
			"message":   message,
		})

		assert.Equal(t, 400, status)

		var code string
		err := raw.Extract("code", &code)
		assert.Nil(t, err)
		assert.Equal(t, "address_invalid", code)
	}
}

func TestRegisterAirdropTimestampMissing(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := "Sign this message to register for the airdrop."
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	})

	assert.Equal(t, 400, status)

	var code string
	err := raw.Extract("code", &code)
	assert.Nil(t, err)
	assert.Equal(t, "timestamp_missing", code)
}

func TestRegisterAirdropTimestampBoundary(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()

	// 899s old: within the default 900s TTL.
	w := test.CreateWallet(t)
	message := airdropMessage(time.Now().Add(-899 * time.Second))
	status, _ := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	})
	assert.Equal(t, 200, status)

	// 901s old: expired.
	w = test.CreateWallet(t)
	message = airdropMessage(time.Now().Add(-901 * time.Second))
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	})
	assert.Equal(t, 400, status)

	var code string
	err := raw.Extract("code", &code)
	assert.Nil(t, err)
	assert.Equal(t, "timestamp_expired", code)
}

func TestRegisterAirdropConfiguredTTL(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrarWithConfig(t, map[env.ConfigKey]string{
		registrar.EnvCfgTTL: "10",
	})
	defer m.Close()

	// 9s old: within the configured 10s TTL.
	w := test.CreateWallet(t)
	message := airdropMessage(time.Now().Add(-9 * time.Second))
	status, _ := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	})
	assert.Equal(t, 200, status)

	// 11s old: expired under the configured TTL, accepted under the
	// default one.
	w = test.CreateWallet(t)
	message = airdropMessage(time.Now().Add(-11 * time.Second))
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	})
	assert.Equal(t, 400, status)

	var code string
	err := raw.Extract("code", &code)
	assert.Nil(t, err)
	assert.Equal(t, "timestamp_expired", code)
}

func TestRegisterAirdropConfiguredCORSOrigin(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrarWithConfig(t, map[env.ConfigKey]string{
		registrar.EnvCfgCORSOrigin: "https://drop.example.com",
	})
	defer m.Close()

	status, header := m.Request(t, http.MethodOptions, "/api/airdrop")

	assert.Equal(t, 200, status)
	assert.Equal(t, "https://drop.example.com",
		header.Get("Access-Control-Allow-Origin"))
}

func TestRegisterAirdropTimestampFuture(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now().Add(time.Minute))
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	})

	assert.Equal(t, 400, status)

	var code string
	err := raw.Extract("code", &code)
	assert.Nil(t, err)
	assert.Equal(t, "timestamp_future", code)
}

func TestRegisterAirdropSignatureMismatch(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)
	other := test.CreateWallet(t)

	// Signed by another wallet.
	message := airdropMessage(time.Now())
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": other.Sign(t, message),
		"message":   message,
	})
	assert.Equal(t, 400, status)

	var code string
	err := raw.Extract("code", &code)
	assert.Nil(t, err)
	assert.Equal(t, "signature_mismatch", code)

	// Malformed signature.
	status, raw = m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": "0x1234",
		"message":   message,
	})
	assert.Equal(t, 400, status)

	err = raw.Extract("code", &code)
	assert.Nil(t, err)
	assert.Equal(t, "signature_invalid", code)
}

func TestRegisterAirdropIdempotent(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now())
	body := map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": w.Sign(t, message),
		"message":   message,
	}

	status, raw := m.Post(t, "/api/airdrop", body)
	assert.Equal(t, 200, status)

	var registered registrar.RegistrationResource
	err := raw.Extract("registered", &registered)
	assert.Nil(t, err)

	status, raw = m.Post(t, "/api/airdrop", body)
	assert.Equal(t, 200, status)

	var ok bool
	err = raw.Extract("ok", &ok)
	assert.Nil(t, err)
	assert.True(t, ok)

	var duplicateMessage string
	err = raw.Extract("message", &duplicateMessage)
	assert.Nil(t, err)
	assert.Equal(t, "Address already registered", duplicateMessage)

	var duplicate registrar.RegistrationResource
	err = raw.Extract("registered", &duplicate)
	assert.Nil(t, err)
	assert.Equal(t, registered.ID, duplicate.ID)
}

func TestRegisterAirdropCaseInsensitive(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now())
	signature := w.Sign(t, message)

	// EIP-55 mixed-case form.
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": signature,
		"message":   message,
	})
	assert.Equal(t, 200, status)

	var registered registrar.RegistrationResource
	err := raw.Extract("registered", &registered)
	assert.Nil(t, err)

	// Lowercase form of the same address is the same entity.
	status, raw = m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   strings.ToLower(w.Address.Hex()),
		"signature": signature,
		"message":   message,
	})
	assert.Equal(t, 200, status)

	var duplicateMessage string
	err = raw.Extract("message", &duplicateMessage)
	assert.Nil(t, err)
	assert.Equal(t, "Address already registered", duplicateMessage)

	var duplicate registrar.RegistrationResource
	err = raw.Extract("registered", &duplicate)
	assert.Nil(t, err)
	assert.Equal(t, registered.ID, duplicate.ID)
}

func TestRegisterAirdropDistinctChains(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()
	w := test.CreateWallet(t)

	message := airdropMessage(time.Now())
	signature := w.Sign(t, message)

	status, _ := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": signature,
		"message":   message,
	})
	assert.Equal(t, 200, status)

	// A different chain is a different registration, not a duplicate.
	status, raw := m.Post(t, "/api/airdrop", map[string]interface{}{
		"address":   w.Address.Hex(),
		"signature": signature,
		"message":   message,
		"chain":     "base",
	})
	assert.Equal(t, 200, status)
	_, found := raw["message"]
	assert.False(t, found)

	var registered registrar.RegistrationResource
	err := raw.Extract("registered", &registered)
	assert.Nil(t, err)
	assert.Equal(t, "base", registered.Chain)
}

func TestRegisterAirdropMethodNotAllowed(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()

	for _, method := range []string{
		http.MethodGet,
		http.MethodPut,
		http.MethodDelete,
	} {
		status, _ := m.Request(t, method, "/api/airdrop")
		assert.Equal(t, 405, status)
	}
}

func TestRegisterAirdropPreflight(
	t *testing.T,
) {
	t.Parallel()
	m := test.CreateRegistrar(t)
	defer m.Close()

	status, header := m.Request(t, http.MethodOptions, "/api/airdrop")

	assert.Equal(t, 200, status)
	assert.Equal(t, "*", header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", header.Get("Access-Control-Allow-Headers"))
}
