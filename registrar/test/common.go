package test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	goji "goji.io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/drophub/airdrop/lib/cors"
	"github.com/drophub/airdrop/lib/db"
	"github.com/drophub/airdrop/lib/env"
	"github.com/drophub/airdrop/lib/format"
	"github.com/drophub/airdrop/lib/recoverer"
	"github.com/drophub/airdrop/lib/requestlogger"
	"github.com/drophub/airdrop/lib/svc"
	"github.com/drophub/airdrop/registrar"
	"github.com/drophub/airdrop/registrar/app"
	"github.com/drophub/airdrop/registrar/lib/eip191"
)

// Registrar represents a test registrar backed by an in-memory DB.
type Registrar struct {
	Server *httptest.Server
}

// CreateRegistrar creates a new test registrar with an in-memory DB and
// default configuration.
func CreateRegistrar(
	t *testing.T,
) *Registrar {
	return CreateRegistrarWithConfig(t, map[env.ConfigKey]string{})
}

// CreateRegistrarWithConfig creates a new test registrar with an in-memory DB
// and the provided configuration values.
func CreateRegistrarWithConfig(
	t *testing.T,
	config map[env.ConfigKey]string,
) *Registrar {
	ctx := context.Background()

	registrarEnv := env.Env{
		Environment: env.QA,
		Config:      config,
	}
	ctx = env.With(ctx, &registrarEnv)

	registrarDB, err := db.NewSqlite3DBInMemory(ctx)
	if err != nil {
		t.Fatalf("test registrar setup failed: %+v", err)
	}
	err = db.CreateDBTables(ctx, "registrar", registrarDB)
	if err != nil {
		t.Fatalf("test registrar setup failed: %+v", err)
	}
	ctx = db.WithDB(ctx, "registrar", registrarDB)

	mux := goji.NewMux()
	mux.Use(requestlogger.Middleware)
	mux.Use(recoverer.Middleware)
	mux.Use(cors.Middleware(registrar.GetCORSOrigin(ctx)))
	mux.Use(db.Middleware(db.GetDBMap(ctx)))
	mux.Use(env.Middleware(env.Get(ctx)))

	(&app.Controller{}).Bind(mux)

	return &Registrar{
		Server: httptest.NewServer(mux),
	}
}

// Close shuts the test registrar down.
func (m *Registrar) Close() {
	m.Server.Close()
}

// Post posts a JSON body to the test registrar.
func (m *Registrar) Post(
	t *testing.T,
	path string,
	body map[string]interface{},
) (int, svc.Resp) {
	res, err := http.Post(
		m.Server.URL+path,
		"application/json",
		bytes.NewReader([]byte(format.JSONString(body))))
	if err != nil {
		t.Fatalf("test registrar POST failed: %+v", err)
	}
	defer res.Body.Close()

	var raw svc.Resp
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("test registrar POST response failed to parse: %+v", err)
	}

	return res.StatusCode, raw
}

// Request performs a bodyless request against the test registrar, returning
// the status and headers.
func (m *Registrar) Request(
	t *testing.T,
	method string,
	path string,
) (int, http.Header) {
	req, err := http.NewRequest(method, m.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("test registrar %s failed: %+v", method, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("test registrar %s failed: %+v", method, err)
	}
	defer res.Body.Close()

	return res.StatusCode, res.Header
}

// Wallet represents a test wallet able to personal-sign messages.
type Wallet struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// CreateWallet creates a new test wallet.
func CreateWallet(
	t *testing.T,
) *Wallet {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("test wallet setup failed: %+v", err)
	}
	return &Wallet{
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Sign personal-signs the message with the wallet key.
func (w *Wallet) Sign(
	t *testing.T,
	message string,
) string {
	signature, err := eip191.Sign(message, w.Key)
	if err != nil {
		t.Fatalf("test wallet signing failed: %+v", err)
	}
	return signature
}
