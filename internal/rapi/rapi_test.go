package rapi

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingEnv(t *testing.T) {
	os.Unsetenv(envRuntimeAPI)
	_, err := NewClient()
	require.ErrorIs(t, err, ErrConfig)
}

func TestNewClient_ReadsEndpoint(t *testing.T) {
	t.Setenv(envRuntimeAPI, "127.0.0.1:9001")
	c, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9001", c.Endpoint())
}

// scriptedServer replies to a fixed number of connections in order with
// canned responses, recording the raw request text of each.
func scriptedServer(t *testing.T, responses ...string) (endpoint string, requests *[]string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	captured := make([]string, 0, len(responses))
	requests = &captured

	go func() {
		for _, resp := range responses {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 65536)
			n, _ := conn.Read(buf)
			captured = append(captured, string(buf[:n]))
			conn.Write([]byte(resp))
			conn.Close()
		}
	}()

	return ln.Addr().String(), requests
}

func TestNextEvent_HappyPath(t *testing.T) {
	endpoint, reqs := scriptedServer(t,
		"HTTP/1.1 200 OK\r\nLambda-Runtime-Aws-Request-Id: abc-123\r\nContent-Length: 2\r\n\r\n{}",
	)
	c := &Client{endpoint: endpoint}

	ev, err := c.NextEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", ev.RequestID)
	assert.Equal(t, []byte("{}"), ev.Body)
	assert.Contains(t, (*reqs)[0], "GET /2018-06-01/runtime/invocation/next HTTP/1.1")
}

func TestNextEvent_MissingRequestID(t *testing.T) {
	endpoint, _ := scriptedServer(t,
		"HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}",
	)
	c := &Client{endpoint: endpoint}

	_, err := c.NextEvent(context.Background())
	require.ErrorIs(t, err, ErrMissingRequestID)
}

func TestNextEvent_PropagatesOptionalHeaders(t *testing.T) {
	endpoint, _ := scriptedServer(t,
		"HTTP/1.1 200 OK\r\n"+
			"Lambda-Runtime-Aws-Request-Id: req-1\r\n"+
			"Lambda-Runtime-Deadline-Ms: 1700000000000\r\n"+
			"Lambda-Runtime-Invoked-Function-Arn: arn:aws:lambda:us-east-1:123:function:f\r\n"+
			"Lambda-Runtime-Trace-Id: Root=1-abc\r\n"+
			"Content-Length: 2\r\n\r\n{}",
	)
	c := &Client{endpoint: endpoint}

	ev, err := c.NextEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", ev.DeadlineMs)
	assert.Equal(t, "arn:aws:lambda:us-east-1:123:function:f", ev.InvokedFunctionArn)
	assert.Equal(t, "Root=1-abc", ev.TraceID)
}

func TestPostResponse_UsesRequestIDInPath(t *testing.T) {
	endpoint, reqs := scriptedServer(t, "HTTP/1.1 202 Accepted\r\nContent-Length: 0\r\n\r\n")
	c := &Client{endpoint: endpoint}

	err := c.PostResponse(context.Background(), "req-xyz", []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.Contains(t, (*reqs)[0], "/2018-06-01/runtime/invocation/req-xyz/response")
}

func TestPostResponse_TransientFailureReported(t *testing.T) {
	endpoint, _ := scriptedServer(t, "HTTP/1.1 500 Internal Server Error\r\nContent-Length: 0\r\n\r\n")
	c := &Client{endpoint: endpoint}

	err := c.PostResponse(context.Background(), "req-1", []byte("{}"))
	require.Error(t, err)
}

func TestPostError_BodyShape(t *testing.T) {
	endpoint, reqs := scriptedServer(t, "HTTP/1.1 202 Accepted\r\nContent-Length: 0\r\n\r\n")
	c := &Client{endpoint: endpoint}

	err := c.PostError(context.Background(), "req-err", "HandlerFailure", "boom")
	require.NoError(t, err)
	req := (*reqs)[0]
	assert.Contains(t, req, "/2018-06-01/runtime/invocation/req-err/error")
	assert.True(t, strings.Contains(req, `"errorType":"HandlerFailure"`))
	assert.True(t, strings.Contains(req, `"errorMessage":"boom"`))
}

func TestPostInitError_UsesInitPath(t *testing.T) {
	endpoint, reqs := scriptedServer(t, "HTTP/1.1 202 Accepted\r\nContent-Length: 0\r\n\r\n")
	c := &Client{endpoint: endpoint}

	err := c.PostInitError(context.Background(), "Config", "missing env var")
	require.NoError(t, err)
	assert.Contains(t, (*reqs)[0], "/2018-06-01/runtime/init/error")
}
