package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creastudio/studiogate/internal/model"
)

func TestProxyBadGatewayWhenUpstreamDown(t *testing.T) {
	env := newTestEnv(t, model.RoleManager, nil)
	env.upstream.Close()

	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	var body model.ErrorBody
	decodeBody(t, rec, &body)
	if body.Error != "Bad Gateway" {
		t.Errorf("error = %q, want Bad Gateway", body.Error)
	}
}
