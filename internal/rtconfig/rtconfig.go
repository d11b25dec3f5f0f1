// Package rtconfig discovers the environment the Runtime API and the
// platform provide to the process. It is the Go-native equivalent of the
// teacher's internal/utils.GetEnvWithDefault / cmd/localstack.GetEnvOrDie
// pair, adapted from "read LocalStack's own control env vars" to "read
// the handful of AWS_LAMBDA_* variables the core and its fixtures need."
package rtconfig

import (
	"fmt"
	"os"
)

const (
	// EnvRuntimeAPI is the required env var naming the Runtime API's
	// host:port. It is read directly by internal/rapi; it is exposed
	// here too so callers can fail fast at startup without constructing
	// a Client first.
	EnvRuntimeAPI = "AWS_LAMBDA_RUNTIME_API"

	envLogLevel            = "AWS_LAMBDA_LOG_LEVEL"
	envLogLevelFallback    = "RUST_LOG"
	envHandler             = "_HANDLER"
	envTaskRoot            = "LAMBDA_TASK_ROOT"
	envFunctionName        = "AWS_LAMBDA_FUNCTION_NAME"
	envFunctionVersion     = "AWS_LAMBDA_FUNCTION_VERSION"
	envFunctionMemorySize  = "AWS_LAMBDA_FUNCTION_MEMORY_SIZE"
	envFunctionLogGroup    = "AWS_LAMBDA_LOG_GROUP_NAME"
	envFunctionLogStream   = "AWS_LAMBDA_LOG_STREAM_NAME"
)

// GetEnvWithDefault returns the value of key, or defaultValue if key is
// unset or empty.
func GetEnvWithDefault(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

// GetEnvOrDie returns the value of key, or a wrapped error if it is
// unset. Unlike the teacher's GetEnvOrDie (which panics), this returns an
// error: a missing AWS_LAMBDA_RUNTIME_API is an init failure the
// bootstrap loop must be able to report via PostInitError before exiting,
// not an unconditional panic.
func GetEnvOrDie(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("rtconfig: required environment variable %s is not set", key)
	}
	return v, nil
}

// LogLevel returns the configured minimum log level string, consulting
// AWS_LAMBDA_LOG_LEVEL first and falling back to RUST_LOG for parity with
// handlers ported from the original Rust runtime core. Unset means the
// spec's conservative default: "info" (translated by rtlog.ParseLevel).
func LogLevel() string {
	if v, ok := os.LookupEnv(envLogLevel); ok && v != "" {
		return v
	}
	if v, ok := os.LookupEnv(envLogLevelFallback); ok && v != "" {
		return v
	}
	return "info"
}

// FunctionConfig mirrors the platform-provided metadata a handler may
// want to read. None of these are required by the runtime core; they
// exist so example handlers and operator tooling have one place to read
// them from, the same role internal/aws/lambda.FunctionConfig plays in
// the teacher.
type FunctionConfig struct {
	Handler         string
	TaskRoot        string
	Name            string
	Version         string
	MemorySizeMB    string
	LogGroupName    string
	LogStreamName   string
}

// LoadFunctionConfig reads the optional AWS_LAMBDA_* / _HANDLER variables
// available to user code. Absence of any of these is never an error.
func LoadFunctionConfig() FunctionConfig {
	return FunctionConfig{
		Handler:       os.Getenv(envHandler),
		TaskRoot:      os.Getenv(envTaskRoot),
		Name:          os.Getenv(envFunctionName),
		Version:       os.Getenv(envFunctionVersion),
		MemorySizeMB:  os.Getenv(envFunctionMemorySize),
		LogGroupName:  os.Getenv(envFunctionLogGroup),
		LogStreamName: os.Getenv(envFunctionLogStream),
	}
}
