package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/drophub/airdrop/lib/errors"
	"github.com/drophub/airdrop/lib/out"
	"github.com/drophub/airdrop/registrar"
	"github.com/drophub/airdrop/registrar/app"
)

var envFlag string

var hstFlag string
var prtFlag string
var keyFlag string
var crtFlag string

var dsnFlag string
var ttlFlag string
var corFlag string
var chnFlag string

func init() {
	flag.StringVar(&envFlag, "env",
		"qa", "The environment to run in (qa, production), default: qa")

	flag.StringVar(&hstFlag, "host",
		"127.0.0.1", "The host on which the registrar is running")
	flag.StringVar(&prtFlag, "port",
		"2406", "The port on which to run the registrar")
	flag.StringVar(&keyFlag, "key_file",
		"", "The production certificate key file")
	flag.StringVar(&crtFlag, "crt_file",
		"", "The production certificate file")

	flag.StringVar(&dsnFlag, "db_dsn",
		"", "The DSN of the database to use, default: sqlite3://~/.airdrop/registrar-$env.db")
	flag.StringVar(&ttlFlag, "ttl",
		"", "The maximal acceptable age in seconds of message timestamps, default: 900")
	flag.StringVar(&corFlag, "cors_origin",
		"", "The origin allowed to call the API from a browser, default: *")
	flag.StringVar(&chnFlag, "chain",
		"", "The default chain label for registrations, default: ethereum")

	if fl := log.Flags(); fl&log.Ltime != 0 {
		log.SetFlags(fl | log.Lmicroseconds)
	}
}

func main() {
	// Load .env from CWD if present; otherwise use the environment as-is.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	// Flags left unset fall back to the environment.
	if dsnFlag == "" {
		dsnFlag = os.Getenv("DATABASE_URL")
	}
	if ttlFlag == "" {
		ttlFlag = os.Getenv("AIRDROP_TTL_SECONDS")
	}
	if corFlag == "" {
		corFlag = os.Getenv("AIRDROP_ALLOWED_ORIGIN")
	}
	if chnFlag == "" {
		chnFlag = os.Getenv("AIRDROP_CHAIN")
	}

	out.Boldf("airdrop registrar [protocol %s] env=%s\n",
		registrar.Version, envFlag)

	ctx, err := app.BackgroundContextFromFlags(
		envFlag,
		hstFlag, prtFlag,
		keyFlag, crtFlag,
		dsnFlag, ttlFlag, corFlag, chnFlag,
	)
	if err != nil {
		log.Fatal(errors.Details(err))
	}

	mux, err := app.Build(ctx)
	if err != nil {
		log.Fatal(errors.Details(err))
	}

	err = app.Serve(ctx, mux)
	if err != nil {
		log.Fatal(errors.Details(err))
	}
}
