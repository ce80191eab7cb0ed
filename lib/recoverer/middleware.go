package recoverer

import (
	"net/http"
	"runtime/debug"

	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/lib/logging"
	"github.com/drophub/airdrop/lib/respond"
)

type middleware struct {
	http.Handler
}

// ServeHTTP handles incoming HTTP requests, recovering from panics, logging
// them (and a backtrace), and returning a HTTP 500 if possible.
func (m middleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	ctx := r.Context()
	defer func() {
		if rcv := recover(); rcv != nil {
			if e, ok := rcv.(error); ok {
				logging.Logf(ctx, "Panic: error=%q", e.Error())
				respond.Error(ctx, w, errors.Trace(e))
			} else {
				logging.Logf(ctx, "Non error panic: dump=%+v", rcv)
				respond.Error(ctx, w,
					errors.Newf("Non error panic: %+v", rcv))
			}
			debug.PrintStack()
		}
	}()

	m.Handler.ServeHTTP(w, r)
}

// Middleware that recovers from panics, logs the panic (and a backtrace), and
// returns a HTTP 500 (Internal Server Error) status if possible.
func Middleware(h http.Handler) http.Handler {
	return middleware{h}
}
