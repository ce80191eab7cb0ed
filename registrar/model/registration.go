package model

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/drophub/airdrop/lib/db"
	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/lib/token"
	"github.com/drophub/airdrop/registrar"
)

// Registration represents a verified airdrop registration. At most one
// registration exists per (lowercased address, chain) pair; rows are never
// updated or deleted.
type Registration struct {
	Token   string
	Created time.Time

	Address   string
	Signature string
	Message   string
	Chain     string
	Source    string

	Timestamp  time.Time
	VerifiedAt time.Time `db:"verified_at"`
}

// NewRegistrationResource generates a new registration resource.
func NewRegistrationResource(
	ctx context.Context,
	registration *Registration,
) registrar.RegistrationResource {
	return registrar.RegistrationResource{
		ID: registration.Token,
		Created: registration.Created.UnixNano() /
			registrar.TimeResolutionNs,
		Address:   registration.Address,
		Signature: registration.Signature,
		Message:   registration.Message,
		Chain:     registration.Chain,
		Source:    registration.Source,
		Timestamp: registration.Timestamp.UnixNano() /
			registrar.TimeResolutionNs,
		VerifiedAt: registration.VerifiedAt.UnixNano() /
			registrar.TimeResolutionNs,
	}
}

// CreateRegistration creates and stores a new Registration object. The
// address is normalized to lowercase before storage. The insert is a no-op if
// a registration already exists for the (address, chain) pair, in which case
// ErrUniqueConstraintViolation is returned without any row being written.
func CreateRegistration(
	ctx context.Context,
	address string,
	signature string,
	message string,
	chain string,
	source string,
	timestamp time.Time,
	verifiedAt time.Time,
) (*Registration, error) {
	registration := Registration{
		Token:   token.New("registration"),
		Created: time.Now().UTC(),

		Address:   strings.ToLower(address),
		Signature: signature,
		Message:   message,
		Chain:     chain,
		Source:    source,

		Timestamp:  timestamp,
		VerifiedAt: verifiedAt,
	}

	ext := db.Ext(ctx, "registrar")
	res, err := sqlx.NamedExec(ext, `
INSERT INTO registrations
  (token, created, address, signature, message, chain, source,
   timestamp, verified_at)
VALUES
  (:token, :created, :address, :signature, :message, :chain, :source,
   :timestamp, :verified_at)
ON CONFLICT (address, chain) DO NOTHING
`, registration)
	if err != nil {
		switch err := err.(type) {
		case *pq.Error:
			if err.Code.Name() == "unique_violation" {
				return nil, errors.Trace(ErrUniqueConstraintViolation{err})
			}
		case sqlite3.Error:
			if err.ExtendedCode == sqlite3.ErrConstraintUnique {
				return nil, errors.Trace(ErrUniqueConstraintViolation{err})
			}
		}
		return nil, errors.Trace(err)
	}

	// ON CONFLICT DO NOTHING does not error on duplicates, it skips the
	// insert. Both drivers report it through the affected row count.
	if affected, err := res.RowsAffected(); err != nil {
		return nil, errors.Trace(err)
	} else if affected == 0 {
		return nil, errors.Trace(ErrUniqueConstraintViolation{nil})
	}

	return &registration, nil
}

// LoadRegistrationByAddressAndChain attempts to load a registration for the
// given address (case-insensitively) and chain.
func LoadRegistrationByAddressAndChain(
	ctx context.Context,
	address string,
	chain string,
) (*Registration, error) {
	registration := Registration{
		Address: strings.ToLower(address),
		Chain:   chain,
	}

	ext := db.Ext(ctx, "registrar")
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM registrations
WHERE address = :address AND chain = :chain
`, registration); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&registration); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &registration, nil
}
