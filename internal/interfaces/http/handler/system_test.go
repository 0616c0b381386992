package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystemHandler() *SystemHandler {
	return NewSystemHandler("fiscal-engine", "1.0.0", EngineInfo{
		StandardRates:       []string{"0", "4", "10", "21"},
		SimilarityThreshold: 0.9,
		SimilarityAlgorithm: "levenshtein",
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := newTestSystemHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "fiscal-engine", resp.Data.Name)
	assert.Equal(t, "1.0.0", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.Equal(t, []string{"0", "4", "10", "21"}, resp.Data.Engine.StandardRates)
	assert.Equal(t, "levenshtein", resp.Data.Engine.SimilarityAlgorithm)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := newTestSystemHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "pong", resp.Data.Message)
	_, err := time.Parse(time.RFC3339, resp.Data.Timestamp)
	assert.NoError(t, err)
}
