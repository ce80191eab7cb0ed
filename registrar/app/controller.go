package app

import (
	goji "goji.io"
	"goji.io/pat"

	"github.com/drophub/airdrop/registrar/endpoint"
)

// Controller binds the API.
type Controller struct{}

// Bind registers the API routes.
func (c *Controller) Bind(
	mux *goji.Mux,
) {
	// Public.
	mux.HandleFunc(pat.Post("/api/airdrop"), endpoint.HandlerFor(endpoint.EndPtRegisterAirdrop))

	// Anything else on the route (OPTIONS is short-circuited by the CORS
	// middleware) is a 405.
	mux.HandleFunc(pat.New("/api/airdrop"), endpoint.MethodNotAllowed)
}
