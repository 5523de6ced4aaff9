package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/testutil"
	"github.com/dom/vehicle-reservation/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users"), map[string]string{
		"username": "John.Doe@Example.com",
		"password": "secret",
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &created)
	assert.Equal(t, "john.doe@example.com", created["username"])
	assert.Equal(t, true, created["active"])
	assert.NotContains(t, created, "password")

	t.Run("duplicate username conflicts", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users"), map[string]string{
			"username": "john.doe@example.com",
			"password": "other",
		})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusConflict, "")
	})

	t.Run("get and list", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/john.doe@example.com"), nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users"), nil)
		defer resp.Body.Close()
		var list []domain.UserCredential
		testutil.AssertJSONResponse(t, resp, &list)
		assert.Len(t, list, 1)
	})

	t.Run("verify password", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/john.doe@example.com/verify"), map[string]string{"password": "secret"})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/john.doe@example.com/verify"), map[string]string{"password": "wrong"})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("update password", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/users/john.doe@example.com"), map[string]string{"password": "changed"})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/john.doe@example.com/verify"), map[string]string{"password": "changed"})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("detail lifecycle", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/john.doe@example.com/detail"), map[string]interface{}{
			"firstName":   "John",
			"lastName":    "Doe",
			"dateOfBirth": "1990-05-01",
			"address":     map[string]string{"city": "Springfield"},
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var detail domain.UserDetail
		testutil.AssertJSONResponse(t, resp, &detail)
		assert.Equal(t, "John", detail.FirstName)
		assert.Equal(t, "Springfield", detail.Address.City)
		assert.Equal(t, "1990-05-01", detail.DateOfBirth.String())

		resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/users/john.doe@example.com/detail"), map[string]interface{}{
			"firstName": "John",
			"lastName":  "Smith",
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/john.doe@example.com/detail"), nil)
		defer resp.Body.Close()
		var fetched domain.UserDetail
		testutil.AssertJSONResponse(t, resp, &fetched)
		assert.Equal(t, "Smith", fetched.LastName)
		assert.Equal(t, detail.ID, fetched.ID)
		assert.Equal(t, detail.UserID, fetched.UserID)
	})

	t.Run("delete", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/users/john.doe@example.com"), nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/john.doe@example.com"), nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)

		resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/john.doe@example.com/detail"), nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func createDestination(t *testing.T, ts *testutil.TestServer, city string) domain.Destination {
	t.Helper()
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/destinations"), map[string]interface{}{
		"city":   city,
		"active": true,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var d domain.Destination
	testutil.AssertJSONResponse(t, resp, &d)
	return d
}

func TestRouteHandlers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	a := createDestination(t, ts, "Town A")
	b := createDestination(t, ts, "Town B")
	c := createDestination(t, ts, "Town C")

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/routes"), map[string]int64{
		"departureId": a.ID,
		"arrivalId":   b.ID,
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var pair []domain.Route
	testutil.AssertJSONResponse(t, resp, &pair)
	require.Len(t, pair, 2)
	assert.Equal(t, "Town A - Town B", pair[0].Name)
	assert.Equal(t, "Town B - Town A", pair[1].Name)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/routes"), map[string]int64{
		"departureId": a.ID,
		"arrivalId":   c.ID,
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	t.Run("reachable", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/destinations/"+itoa(a.ID)+"/reachable"), nil)
		defer resp.Body.Close()
		var reachable []domain.Destination
		testutil.AssertJSONResponse(t, resp, &reachable)

		cities := make([]string, 0, len(reachable))
		for _, d := range reachable {
			cities = append(cities, d.City)
		}
		assert.Equal(t, []string{"Town B", "Town C"}, cities)
	})

	t.Run("update mirrors active", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/routes/"+itoa(pair[0].ID)), map[string]interface{}{"active": false})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/routes/"+itoa(pair[1].ID)), nil)
		defer resp.Body.Close()
		var reverse domain.Route
		testutil.AssertJSONResponse(t, resp, &reverse)
		assert.False(t, reverse.Active)
	})

	t.Run("missing destination", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/routes"), map[string]int64{
			"departureId": a.ID,
			"arrivalId":   999,
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	})

	t.Run("delete removes both directions", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/routes/"+itoa(pair[1].ID)), nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		for _, r := range pair {
			resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/routes/"+itoa(r.ID)), nil)
			resp.Body.Close()
			testutil.AssertStatusCode(t, resp, http.StatusNotFound)
		}
	})
}

func TestRequestErrors(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"non numeric id", http.MethodGet, "/destinations/abc", "", http.StatusBadRequest},
		{"zero id", http.MethodGet, "/operators/0", "", http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/destinations", "{not json", http.StatusBadRequest},
		{"bad query filter", http.MethodGet, "/booking-offices?destinationId=x", "", http.StatusBadRequest},
		{"unknown destination", http.MethodGet, "/destinations/42", "", http.StatusNotFound},
		{"unknown vehicle", http.MethodGet, "/vehicles/42", "", http.StatusNotFound},
		{"office for missing destination", http.MethodPost, "/booking-offices", `{"destinationId": 42}`, http.StatusUnprocessableEntity},
		{"bad weekday", http.MethodPost, "/route-schedules", `{"operatorId": 1, "routeId": 1, "day": "Someday"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.APIURL(tt.path), strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			testutil.AssertErrorResponse(t, resp, tt.status, "")
		})
	}
}

func TestFleetHandlers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/operators"), map[string]interface{}{
		"name":   "Acme Coaches",
		"active": true,
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var op domain.Operator
	testutil.AssertJSONResponse(t, resp, &op)
	require.NotZero(t, op.ID)

	resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/operators/"+itoa(op.ID)), map[string]interface{}{
		"name":         "Acme Travel",
		"primaryEmail": "ops@acme.test",
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var updated domain.Operator
	testutil.AssertJSONResponse(t, resp, &updated)
	assert.Equal(t, op.ID, updated.ID)
	assert.Equal(t, "Acme Travel", updated.Name)
	assert.Equal(t, op.CreatedAt.Unix(), updated.CreatedAt.Unix())

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/operators"), nil)
	defer resp.Body.Close()
	var list []domain.Operator
	testutil.AssertJSONResponse(t, resp, &list)
	assert.Len(t, list, 1)

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/operators/"+itoa(op.ID)), nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/operators/"+itoa(op.ID)), nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)
}

func TestScheduleHandlers(t *testing.T) {
	ts := testutil.NewTestServer(t)
	seed := testutil.NewSeed(t, ts.Repos)

	out, _ := seed.RoutePair(seed.Destination("Town A"), seed.Destination("Town B"))
	op := seed.Operator("Acme")
	vehicle := seed.Vehicle("Coach", seed.SeatLayout())

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/route-schedules"), map[string]interface{}{
		"operatorId": op.ID,
		"routeId":    out.ID,
		"day":        "monday",
		"time":       "09:30:00",
		"active":     true,
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var rs map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &rs)
	assert.Equal(t, "Monday", rs["day"])
	assert.Equal(t, "09:30:00", rs["time"])
	assert.Equal(t, "Acme", rs["operatorName"])
	assert.Equal(t, "Town A", rs["departureCity"])
	assert.Equal(t, "Town B", rs["arrivalCity"])
	rsID := int64(rs["id"].(float64))

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/vehicle-schedules"), map[string]interface{}{
		"operatorId":      op.ID,
		"vehicleId":       vehicle.ID,
		"routeScheduleId": rsID,
		"date":            "2024-03-04",
		"active":          true,
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var vs domain.VehicleScheduleView
	testutil.AssertJSONResponse(t, resp, &vs)
	assert.Equal(t, "Coach", vs.VehicleType)
	assert.Equal(t, "Monday", vs.Day)
	assert.Equal(t, "09:30:00", vs.Time.String())
	assert.Equal(t, "2024-03-04", vs.Date.String())

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/vehicle-schedules?vehicleId="+itoa(vehicle.ID)), nil)
	defer resp.Body.Close()
	var list []domain.VehicleScheduleView
	testutil.AssertJSONResponse(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, vs.ID, list[0].ID)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/vehicle-schedules?vehicleId=999"), nil)
	defer resp.Body.Close()
	var empty []domain.VehicleScheduleView
	testutil.AssertJSONResponse(t, resp, &empty)
	assert.Empty(t, empty)
}

func TestInfrastructureEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.BaseURL() + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OK", string(body))
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.BaseURL() + "/health")
		require.NoError(t, err)
		resp.Body.Close()

		resp, err = http.Get(ts.BaseURL() + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "vrs_http_requests_total")
	})

	t.Run("cors preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.APIURL("/destinations"), nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://office.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestChangeFeed(t *testing.T) {
	ts := testutil.NewTestServer(t)

	conn, _, err := ws.DefaultDialer.Dial(ts.EventsURL(string(domain.KindDestination)), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return ts.Hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Operators are filtered out; only the destination reaches the client.
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/operators"), map[string]string{"name": "Acme"})
	resp.Body.Close()
	d := createDestination(t, ts, "Town A")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg websocket.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, websocket.MessageTypeChange, msg.Type)

	var ev events.ChangeEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, domain.KindDestination, ev.Kind)
	assert.Equal(t, events.OpCreated, ev.Op)
	assert.Equal(t, d.ID, ev.EntityID)
}

func TestChangeFeedResubscribe(t *testing.T) {
	ts := testutil.NewTestServer(t)

	conn, _, err := ws.DefaultDialer.Dial(ts.EventsURL(string(domain.KindDestination)), nil)
	require.NoError(t, err)
	defer conn.Close()

	sub, err := websocket.NewMessage(websocket.MessageTypeSubscribe, websocket.SubscribePayload{
		Kinds: []string{string(domain.KindOperator)},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(sub))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply websocket.Message
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, websocket.MessageTypeSubscribed, reply.Type)

	createDestination(t, ts, "Town A")
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/operators"), map[string]string{"name": "Acme"})
	resp.Body.Close()

	var change websocket.Message
	require.NoError(t, conn.ReadJSON(&change))
	var ev events.ChangeEvent
	require.NoError(t, json.Unmarshal(change.Payload, &ev))
	assert.Equal(t, domain.KindOperator, ev.Kind)
}

func TestPostgresSmoke(t *testing.T) {
	ts := testutil.NewPostgresTestServer(t)

	a := createDestination(t, ts, "Town A")
	b := createDestination(t, ts, "Town B")

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/routes"), map[string]int64{
		"departureId": a.ID,
		"arrivalId":   b.ID,
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users"), map[string]string{
		"username": "ops@example.com",
		"password": "secret",
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users"), map[string]string{
		"username": "OPS@example.com",
		"password": "secret",
	})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
