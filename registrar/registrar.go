package registrar

const (
	// Version is the current protocol version.
	Version string = "0"
	// TimeResolutionNs is the resolution of our time variables in nanoseconds
	// (aka resolution in milliseconds).
	TimeResolutionNs int64 = 1000 * 1000
	// DefaultChain is the chain label used when none is specified.
	DefaultChain string = "ethereum"
	// DefaultTTL is the maximal acceptable age in seconds of the timestamp
	// embedded in a signed message.
	DefaultTTL int64 = 900
)

// RegistrationResource is the representation of a registration in the
// registrar API.
type RegistrationResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`

	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	Chain     string `json:"chain"`
	Source    string `json:"source"`

	Timestamp  int64 `json:"timestamp"`
	VerifiedAt int64 `json:"verified_at"`
}
