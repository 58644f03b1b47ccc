package lambda

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func echoHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("X-Limit", r.URL.Query().Get("limit"))
		w.Header().Set("X-Auth", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	})
	return mux
}

func TestHandleForwardsRequest(t *testing.T) {
	p := NewProxy(echoHandler())

	resp, err := p.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/api/echo",
		Body:                  `{"hello":"world"}`,
		Headers:               map[string]string{"Authorization": "Bearer t"},
		QueryStringParameters: map[string]string{"limit": "5"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Body != `{"hello":"world"}` {
		t.Errorf("body = %q", resp.Body)
	}
	if resp.Headers["X-Limit"] != "5" || resp.Headers["X-Auth"] != "Bearer t" {
		t.Errorf("headers = %v", resp.Headers)
	}
}

func TestHandleBase64Body(t *testing.T) {
	p := NewProxy(echoHandler())

	resp, err := p.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/echo",
		Body:            base64.StdEncoding.EncodeToString([]byte("raw")),
		IsBase64Encoded: true,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Body != "raw" {
		t.Errorf("body = %q", resp.Body)
	}

	resp, _ = p.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/echo",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad base64: status = %d", resp.StatusCode)
	}
}

func TestHandleUnknownRoute(t *testing.T) {
	resp, err := NewProxy(echoHandler()).Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/nope",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
