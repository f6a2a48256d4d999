package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"contracthub/internal/contractid"
	"contracthub/internal/ens"
	blobrepo "contracthub/internal/gateway/repository/blob"
	"contracthub/internal/publish"
	"contracthub/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", contractid.ErrInvalidContractID), http.StatusBadRequest},
		{ens.ErrInvalidIdentity, http.StatusBadRequest},
		{ens.ErrUnresolved, http.StatusNotFound},
		{publish.ErrBuiltIn, http.StatusNotFound},
		{blobrepo.ErrNotFound, http.StatusNotFound},
		{publish.ErrRegistryUnavailable, http.StatusServiceUnavailable},
		{errNoBlobMirror, http.StatusServiceUnavailable},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{storage.ErrFetch, http.StatusBadGateway},
		{errors.New("boom"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestPathParamUnescapes(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "ipfs%3A%2F%2FQmAbc%2F0")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	assert.Equal(t, "ipfs://QmAbc/0", pathParam(r, "id"))
}
