package respond

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/lib/format"
	"github.com/drophub/airdrop/lib/logging"
	"github.com/drophub/airdrop/lib/svc"
)

func panicError() errors.UserError {
	err := errors.NewUserError(nil,
		http.StatusInternalServerError,
		"server_error",
		"There was an error while processing your request.",
	)
	return errors.ExtractUserError(err)
}

// errorResponse generates a svc.Resp object from a UserError. On 4xx the
// `error` key carries the human readable message; on 5xx it carries the
// stable error code and the message moves to `detail`, so that clients can
// switch on `error` for server failures. The `code` key always carries the
// stable error code.
func errorResponse(
	ctx context.Context,
	err errors.UserError,
) svc.Resp {
	e := errors.Build(err)
	if err.Status() >= http.StatusInternalServerError {
		return svc.Resp{
			"error":  format.JSONPtr(e.Code),
			"detail": format.JSONPtr(e.Message),
			"code":   format.JSONPtr(e.Code),
		}
	}
	return svc.Resp{
		"error": format.JSONPtr(e.Message),
		"code":  format.JSONPtr(e.Code),
	}
}

// OK is used to successfully respond with status 200.
func OK(
	ctx context.Context,
	w http.ResponseWriter,
	resp svc.Resp,
) {
	Respond(ctx, w, http.StatusOK, nil, resp)
}

// Error triages the error and responds with its content if it's a UserError,
// otherwise responds with a default `server_error`.
func Error(
	ctx context.Context,
	w http.ResponseWriter,
	err error,
) {
	// Handle UserError
	if e := errors.ExtractUserError(err); e != nil {
		logging.Logf(ctx,
			"UserError: status=%d code=%q message=%q",
			e.Status(), e.Code(), e.Message())
		for _, line := range errors.ErrorStack(err) {
			logging.Logf(ctx, "  %s", line)
		}

		resp := errorResponse(ctx, e)
		Respond(ctx, w, e.Status(), nil, resp)
	} else {
		logging.Logf(ctx,
			"Unexpected error: error=%q", err.Error())
		for _, line := range errors.ErrorStack(err) {
			logging.Logf(ctx, "  %s", line)
		}

		resp := errorResponse(ctx, panicError())
		Respond(ctx, w, http.StatusInternalServerError, nil, resp)
	}
}

// Respond is used to generate a response manually setting the status code,
// headers and body.
func Respond(
	ctx context.Context,
	w http.ResponseWriter,
	status int,
	header http.Header,
	data interface{},
) {
	w.Header().Add("Content-Type", "application/json")
	for header, values := range header {
		for _, value := range values {
			w.Header().Add(header, value)
		}
	}

	if status != 0 {
		w.WriteHeader(status)
	}

	if data != nil {
		if err := formatJSON(data, w); err != nil {
			logging.Logf(ctx, "Failed to write body")
		}
	}
}

func formatJSON(
	response interface{},
	w io.Writer,
) error {
	var b bytes.Buffer
	formatted, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	json.HTMLEscape(&b, formatted)
	if _, err := b.Write([]byte("\n")); err != nil {
		return err
	}
	if _, err := io.Copy(w, &b); err != nil {
		return err
	}
	return nil
}
