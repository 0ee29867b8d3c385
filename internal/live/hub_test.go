package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"HeatExchange/internal/calc/exchanger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(NewServer(exchanger.DefaultParameters()).ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeWSCalculates(t *testing.T) {
	conn := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "calc",
		"parameters": map[string]any{
			"height": 2, "cross_section": 1, "material_flow_rate": 3600, "gas_flow_rate": 3600,
			"material_inlet_temp": 80, "gas_inlet_temp": 20, "material_specific_heat": 1000,
			"gas_specific_heat": 1.2, "volumetric_heat_transfer_coeff": 500, "calculation_steps": 4,
		},
	}))
	var reply Msg
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgResult, reply.Type)
	require.NotNil(t, reply.Result)
	assert.Len(t, reply.Result.Heights, 5)
	assert.InDelta(t, 60.0, reply.Result.TotalHeatTransferKW, 1e-9)

	// the connection stays open for the next request
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "calc", "parameters": map[string]any{"height": 0}}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
	assert.Contains(t, reply.Error, "height")
}

func TestServeWSUnknownType(t *testing.T) {
	conn := dial(t)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "start"}))
	var reply Msg
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
}

func TestHandleDefaultsAndNonFinite(t *testing.T) {
	s := NewServer(exchanger.DefaultParameters())
	reply := s.handle(Msg{Type: MsgCalc, Parameters: []byte(`{"height":1,"cross_section":1,"material_flow_rate":1,"gas_flow_rate":1,"volumetric_heat_transfer_coeff":1,"gas_specific_heat":1}`)})
	assert.Equal(t, MsgError, reply.Type)
	assert.Equal(t, exchanger.ErrNonFinite.Error(), reply.Error)

	reply = s.handle(Msg{Type: MsgCalc, Parameters: []byte(`{`)})
	assert.Equal(t, "invalid parameters", reply.Error)
}
