package schemas

import "github.com/drophub/airdrop/lib/db"

const (
	registrationsSQL = `
CREATE TABLE IF NOT EXISTS registrations(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,

  address VARCHAR(64) NOT NULL,    -- 0x hex address, lowercased
  signature VARCHAR(256) NOT NULL, -- hex signature, as supplied
  message VARCHAR(2048) NOT NULL,  -- the exact signed payload
  chain VARCHAR(64) NOT NULL,
  source VARCHAR(256) NOT NULL,    -- free-form provenance tag

  timestamp TIMESTAMP NOT NULL,    -- extracted from the signed message
  verified_at TIMESTAMP NOT NULL,  -- server-side verification time

  PRIMARY KEY(token),
  CONSTRAINT registrations_address_chain_u UNIQUE (address, chain)
);
`
)

func init() {
	db.RegisterSchema(
		"registrar",
		"registrations",
		registrationsSQL,
	)
}
