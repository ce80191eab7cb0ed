package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/drophub/airdrop/lib/db"
	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/lib/format"
	"github.com/drophub/airdrop/lib/logging"
	"github.com/drophub/airdrop/lib/ptr"
	"github.com/drophub/airdrop/lib/svc"
	registrarpkg "github.com/drophub/airdrop/registrar"
	"github.com/drophub/airdrop/registrar/lib/eip191"
	"github.com/drophub/airdrop/registrar/model"
)

const (
	// EndPtRegisterAirdrop registers a wallet for the airdrop.
	EndPtRegisterAirdrop EndPtName = "RegisterAirdrop"
)

func init() {
	registrar[EndPtRegisterAirdrop] = NewRegisterAirdrop
}

// RegisterAirdrop verifies a personal-signed registration request and
// persists one registration per (address, chain) pair.
type RegisterAirdrop struct {
	Address   string
	Signature string
	Message   string
	Chain     string
	Source    string

	Timestamp  time.Time
	VerifiedAt time.Time
}

// NewRegisterAirdrop constructs and initializes the endpoint.
func NewRegisterAirdrop(
	r *http.Request,
) (Endpoint, error) {
	return &RegisterAirdrop{}, nil
}

type registerAirdropParams struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	Chain     string `json:"chain"`
	Source    string `json:"source"`
}

// extractParams reads the request parameters from a JSON body, falling back
// to form values for non-JSON requests.
func extractParams(
	r *http.Request,
) (*registerAirdropParams, error) {
	params := registerAirdropParams{}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			return nil, errors.Trace(errors.NewUserErrorf(err,
				400, "body_invalid",
				"The request body failed to parse as JSON.",
			))
		}
	} else {
		params.Address = r.PostFormValue("address")
		params.Signature = r.PostFormValue("signature")
		params.Message = r.PostFormValue("message")
		params.Chain = r.PostFormValue("chain")
		params.Source = r.PostFormValue("source")
	}

	return &params, nil
}

// Validate validates the input parameters.
func (e *RegisterAirdrop) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	params, err := extractParams(r)
	if err != nil {
		return errors.Trace(err) // 400
	}

	if params.Address == "" || params.Signature == "" ||
		params.Message == "" {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "fields_missing",
			"The fields address, signature and message are all required.",
		))
	}

	// Validate address.
	address, err := ValidateAddress(ctx, params.Address)
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Address = *address
	e.Signature = params.Signature
	e.Message = params.Message

	e.Chain = params.Chain
	if e.Chain == "" {
		e.Chain = registrarpkg.GetChain(ctx)
	}
	e.Source = params.Source

	// Extract the embedded timestamp and enforce the TTL window.
	timestamp, err := ExtractTimestamp(ctx, e.Message)
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Timestamp = *timestamp

	age := time.Since(e.Timestamp)
	if age < 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "timestamp_future",
			"The message timestamp is in the future.",
		))
	}
	if ttl := registrarpkg.GetTTL(ctx); age > ttl {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "timestamp_expired",
			"The message timestamp is older than the %d seconds allowed.",
			int64(ttl/time.Second),
		))
	}

	// Recover the signing address and check authorship.
	recovered, err := eip191.RecoverAddress(e.Message, e.Signature)
	if err != nil {
		return errors.Trace(errors.NewUserErrorf(err,
			400, "signature_invalid",
			"The signature you provided failed to parse.",
		))
	}
	if !strings.EqualFold(recovered.Hex(), e.Address) {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "signature_mismatch",
			"The signature you provided was not produced by %s.",
			e.Address,
		))
	}

	e.VerifiedAt = time.Now().UTC()

	return nil
}

// Execute executes the endpoint.
func (e *RegisterAirdrop) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx, "registrar")
	defer db.LoggedRollback(ctx)

	registration, err := model.CreateRegistration(ctx,
		e.Address,
		e.Signature,
		e.Message,
		e.Chain,
		e.Source,
		e.Timestamp,
		e.VerifiedAt,
	)
	if err != nil {
		switch errors.Cause(err).(type) {
		case model.ErrUniqueConstraintViolation:
			existing, err := model.LoadRegistrationByAddressAndChain(ctx,
				e.Address, e.Chain)
			if err != nil {
				return nil, nil, errors.Trace(errors.NewUserErrorf(err,
					500, "db_error",
					"The registration store failed: %s.", err.Error(),
				))
			} else if existing == nil {
				return nil, nil, errors.Trace(errors.Newf(
					"Conflicting registration not found: address=%s chain=%s",
					e.Address, e.Chain))
			}

			db.Commit(ctx)

			logging.Logf(ctx,
				"Duplicate registration: id=%s address=%s chain=%s",
				existing.Token, existing.Address, existing.Chain)

			return ptr.Int(http.StatusOK), &svc.Resp{
				"ok":      format.JSONPtr(true),
				"message": format.JSONPtr("Address already registered"),
				"registered": format.JSONPtr(
					model.NewRegistrationResource(ctx, existing)),
			}, nil
		default:
			return nil, nil, errors.Trace(errors.NewUserErrorf(err,
				500, "db_error",
				"The registration failed to be stored: %s.", err.Error(),
			))
		}
	}

	db.Commit(ctx)

	logging.Logf(ctx,
		"Created registration: id=%s address=%s chain=%s source=%q",
		registration.Token, registration.Address,
		registration.Chain, registration.Source)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"ok": format.JSONPtr(true),
		"registered": format.JSONPtr(
			model.NewRegistrationResource(ctx, registration)),
	}, nil
}
