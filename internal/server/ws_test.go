package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, ts *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws" + query
	return websocket.Dial(ctx, url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msg Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func writeEvent(t *testing.T, conn *websocket.Conn, ev any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, ev))
}

func TestWebSocketSelectionSession(t *testing.T) {
	s := newTestServer(&staticSource{records: testRecords()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := dialWS(t, ts, "?location=NSW")
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	// The session opens on the estimated rate.
	msg := readMessage(t, conn)
	require.Equal(t, MessageProjection, msg.Type, msg.Error)
	require.NotNil(t, msg.Data)
	assert.Equal(t, schema.EstimatedRate, msg.Data.Rate.Source)
	assert.Equal(t, schema.EstimatedRate, msg.Selection.Source)

	writeEvent(t, conn, schema.SelectionEvent{Kind: schema.SelectScenario, Scenario: "worse"})
	msg = readMessage(t, conn)
	require.Equal(t, MessageProjection, msg.Type, msg.Error)
	assert.Equal(t, "worse", msg.Data.Rate.Scenario)
	assert.InDelta(t, 1.35, msg.Data.Rate.Value, 1e-9)

	// An invalid custom value is reported and the scenario stays selected.
	writeEvent(t, conn, schema.SelectionEvent{Kind: schema.SelectCustom, Value: -2})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.NotEmpty(t, msg.Error)
	assert.Equal(t, schema.ScenarioRate, msg.Selection.Source)
	assert.Equal(t, "worse", msg.Selection.Scenario)

	writeEvent(t, conn, schema.SelectionEvent{Kind: schema.SelectCustom, Value: 1.2})
	msg = readMessage(t, conn)
	require.Equal(t, MessageProjection, msg.Type, msg.Error)
	assert.Equal(t, schema.CustomRate, msg.Data.Rate.Source)
	assert.Contains(t, msg.Data.Caption, "inputted R_eff of 1.2")

	writeEvent(t, conn, map[string]string{"kind": "select_everything"})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, schema.CustomRate, msg.Selection.Source)

	writeEvent(t, conn, schema.SelectionEvent{Kind: schema.SelectEstimated})
	msg = readMessage(t, conn)
	require.Equal(t, MessageProjection, msg.Type, msg.Error)
	assert.Equal(t, schema.EstimatedRate, msg.Data.Rate.Source)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocketMalformedEvent(t *testing.T) {
	s := newTestServer(&staticSource{records: testRecords()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := dialWS(t, ts, "?location=NSW")
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()
	_ = readMessage(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, "malformed selection event", msg.Error)
}

func TestWebSocketUnknownLocation(t *testing.T) {
	s := newTestServer(&staticSource{records: testRecords()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	_, resp, err := dialWS(t, ts, "?location=ZZZ")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
