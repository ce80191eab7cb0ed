package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drophub/airdrop/lib/db"
	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/registrar/model"

	// force initialization of schemas
	_ "github.com/drophub/airdrop/registrar/model/schemas"
)

func setupModel(
	t *testing.T,
) context.Context {
	ctx := context.Background()

	registrarDB, err := db.NewSqlite3DBInMemory(ctx)
	assert.Nil(t, err)
	err = db.CreateDBTables(ctx, "registrar", registrarDB)
	assert.Nil(t, err)

	return db.WithDB(ctx, "registrar", registrarDB)
}

func TestCreateRegistrationNormalizesAddress(
	t *testing.T,
) {
	ctx := setupModel(t)

	timestamp := time.Now().UTC().Truncate(time.Second)
	registration, err := model.CreateRegistration(ctx,
		"0x52908400098527886E0F7030069857D2E4169EE7",
		"0xsig", "message", "ethereum", "",
		timestamp, time.Now().UTC())
	assert.Nil(t, err)
	assert.Equal(t,
		"0x52908400098527886e0f7030069857d2e4169ee7",
		registration.Address)

	loaded, err := model.LoadRegistrationByAddressAndChain(ctx,
		"0x52908400098527886E0F7030069857D2E4169EE7", "ethereum")
	assert.Nil(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, registration.Token, loaded.Token)
}

func TestCreateRegistrationDuplicate(
	t *testing.T,
) {
	ctx := setupModel(t)

	now := time.Now().UTC()
	_, err := model.CreateRegistration(ctx,
		"0x52908400098527886e0f7030069857d2e4169ee7",
		"0xsig", "message", "ethereum", "",
		now, now)
	assert.Nil(t, err)

	// Same pair, different casing: the insert is skipped.
	_, err = model.CreateRegistration(ctx,
		"0x52908400098527886E0F7030069857D2E4169EE7",
		"0xsig2", "message2", "ethereum", "",
		now, now)
	assert.NotNil(t, err)
	switch errors.Cause(err).(type) {
	case model.ErrUniqueConstraintViolation:
	default:
		t.Fatalf("expected unique constraint violation, got: %+v", err)
	}

	// A different chain is not a duplicate.
	_, err = model.CreateRegistration(ctx,
		"0x52908400098527886e0f7030069857d2e4169ee7",
		"0xsig", "message", "base", "",
		now, now)
	assert.Nil(t, err)
}
