package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"offerscope-backend/lib/kvstore"
	"offerscope-backend/services/notify"
	"offerscope-backend/services/session"
	"offerscope-backend/services/snapshots"
	"offerscope-backend/services/starred"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) *httptest.Server {
	store := kvstore.NewMemoryStore()
	snapshotSvc := snapshots.NewService(store)
	starredSvc := starred.NewService(store)
	svc := NewService(
		session.NewService(snapshotSvc, starredSvc),
		snapshotSvc,
		starredSvc,
		notify.NewService(notify.Options{}),
	)

	r := chi.NewRouter()
	svc.Routes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

const snapshotHtml = `<html><body>
<div class="card" data-bbox="0 0 300 180">
	<img src="/api/v1/logos?domain=acme.com">
	<div>5% cash back</div>
	<a href="https://offers.example.com/r/acme">Shop</a>
</div>
</body></html>`

func TestScanEndpoint(t *testing.T) {
	server := setup(t)

	res, err := http.Post(server.URL+"/v1/scan", "text/html", strings.NewReader(snapshotHtml))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body scanResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Session, 8)
	require.Len(t, body.Offers.Percent, 1)
	require.Equal(t, "Acme", body.Offers.Percent[0].Merchant)
	require.Empty(t, body.Deltas)
}

func TestScanEndpointNoOffers(t *testing.T) {
	server := setup(t)

	res, err := http.Post(server.URL+"/v1/scan", "text/html", strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestOffersEndpoint(t *testing.T) {
	server := setup(t)

	res, err := http.Post(server.URL+"/v1/scan", "text/html", strings.NewReader(snapshotHtml))
	require.NoError(t, err)
	res.Body.Close()

	res, err = http.Get(server.URL + "/v1/offers")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var records []snapshots.Record
	require.NoError(t, json.NewDecoder(res.Body).Decode(&records))
	require.Len(t, records, 1)
	require.Equal(t, "Acme", records[0].Merchant)
}

func TestStarredEndpoints(t *testing.T) {
	server := setup(t)
	client := &http.Client{}

	req, err := http.NewRequest(http.MethodPut, server.URL+"/v1/starred/Acme", nil)
	require.NoError(t, err)
	res, err := client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, err = http.Get(server.URL + "/v1/starred")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&names))
	res.Body.Close()
	require.Equal(t, []string{"Acme"}, names)

	req, err = http.NewRequest(http.MethodDelete, server.URL+"/v1/starred/Acme", nil)
	require.NoError(t, err)
	res, err = client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, err = http.Get(server.URL + "/v1/starred")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&names))
	res.Body.Close()
	require.Empty(t, names)
}

func TestHealth(t *testing.T) {
	server := setup(t)

	res, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}
