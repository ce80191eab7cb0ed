package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	goji "goji.io"

	"github.com/facebookgo/grace/gracehttp"

	"github.com/drophub/airdrop/lib/cert"
	"github.com/drophub/airdrop/lib/cors"
	"github.com/drophub/airdrop/lib/db"
	"github.com/drophub/airdrop/lib/env"
	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/lib/logging"
	"github.com/drophub/airdrop/lib/recoverer"
	"github.com/drophub/airdrop/lib/requestlogger"
	"github.com/drophub/airdrop/registrar"

	// force initialization of schemas
	_ "github.com/drophub/airdrop/registrar/model/schemas"
)

// BackgroundContextFromFlags initializes a background context fully loaded
// with everything that could be extracted from the flags.
func BackgroundContextFromFlags(
	envFlag string, // environment
	hstFlag string, // registrar host
	prtFlag string, // registrar port
	keyFlag string, // production certificate key file
	crtFlag string, // production certificate crt file
	dsnFlag string, // registrar DSN
	ttlFlag string, // timestamp TTL in seconds
	corFlag string, // allowed CORS origin
	chnFlag string, // default chain label
) (context.Context, error) {
	ctx := context.Background()

	registrarEnv := env.Env{
		Environment: env.QA,
		Config:      map[env.ConfigKey]string{},
	}
	if envFlag == "production" || envFlag == "prod" {
		registrarEnv.Environment = env.Production
	}

	registrarEnv.Config[registrar.EnvCfgHost] = hstFlag
	registrarEnv.Config[registrar.EnvCfgPort] = prtFlag
	registrarEnv.Config[registrar.EnvCfgKeyFile] = keyFlag
	registrarEnv.Config[registrar.EnvCfgCrtFile] = crtFlag

	registrarEnv.Config[registrar.EnvCfgTTL] = ttlFlag
	registrarEnv.Config[registrar.EnvCfgCORSOrigin] = corFlag
	registrarEnv.Config[registrar.EnvCfgChain] = chnFlag

	ctx = env.With(ctx, &registrarEnv)

	// registrarDB is the DB backing the registrar service.
	registrarDB, err := db.NewDBForDSN(ctx,
		dsnFlag,
		fmt.Sprintf("sqlite3://~/.airdrop/registrar-%s.db",
			env.Get(ctx).Environment))
	if err != nil {
		return nil, errors.Trace(err)
	}
	err = db.CreateDBTables(ctx, "registrar", registrarDB)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx = db.WithDB(ctx, "registrar", registrarDB)

	return ctx, nil
}

// Build initializes the app and its web stack.
func Build(
	ctx context.Context,
) (*goji.Mux, error) {
	if registrar.GetHost(ctx) == "" {
		return nil, errors.Trace(errors.Newf(
			"You must set the `-host` flag"))
	}
	if registrar.GetPort(ctx) == "" {
		return nil, errors.Trace(errors.Newf(
			"You must set the `-port` flag"))
	}
	mux := goji.NewMux()
	mux.Use(requestlogger.Middleware)
	mux.Use(recoverer.Middleware)
	mux.Use(cors.Middleware(registrar.GetCORSOrigin(ctx)))
	mux.Use(db.Middleware(db.GetDBMap(ctx)))
	mux.Use(env.Middleware(env.Get(ctx)))

	logging.Logf(ctx,
		"Initializing: environment=%s host=%s port=%s ttl=%d origin=%s chain=%s",
		env.Get(ctx).Environment,
		registrar.GetHost(ctx), registrar.GetPort(ctx),
		int64(registrar.GetTTL(ctx)/time.Second),
		registrar.GetCORSOrigin(ctx), registrar.GetChain(ctx))

	(&Controller{}).Bind(mux)

	return mux, nil
}

// Serve the goji mux.
func Serve(
	ctx context.Context,
	mux *goji.Mux,
) error {

	s := &http.Server{
		Addr:         fmt.Sprintf(":%s", registrar.GetPort(ctx)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		TLSConfig: &tls.Config{
			GetCertificate: cert.GetGetCertificate(ctx,
				registrar.GetHost(ctx),
				registrar.GetCrtFile(ctx), registrar.GetKeyFile(ctx)),
			PreferServerCipherSuites: true,
			MinVersion:               tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{
				tls.CurveP256,
				tls.X25519,
			},
		},
		Handler: mux,
	}

	logging.Logf(ctx, "Listening: port=%s", registrar.GetPort(ctx))

	err := gracehttp.Serve(s)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}
