package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(h *JSONRPCHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/", h.Handle)
	return engine
}

func postRPC(t *testing.T, engine *gin.Engine, body string) JSONRPCResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp JSONRPCResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandleDispatch(t *testing.T) {
	h := NewJSONRPCHandler()
	h.RegisterMethod("echo", func(_ *gin.Context, params json.RawMessage) (interface{}, error) {
		var in map[string]interface{}
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, NewError(ErrInvalidParams, "invalid params")
		}
		return in, nil
	})
	engine := newTestRouter(h)

	resp := postRPC(t, engine, `{"jsonrpc":"2.0","id":1,"method":"echo","params":{"hello":"world"}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok || result["hello"] != "world" {
		t.Errorf("result = %+v, want echoed params", resp.Result)
	}
	if resp.ID != float64(1) {
		t.Errorf("id = %v, want 1", resp.ID)
	}
}

func TestHandleErrors(t *testing.T) {
	h := NewJSONRPCHandler()
	h.RegisterMethod("fail", func(_ *gin.Context, _ json.RawMessage) (interface{}, error) {
		return nil, NewError(ErrInvalidParams, "account is required")
	})
	engine := newTestRouter(h)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"jsonrpc":`, ErrParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"fail"}`, ErrInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"nope"}`, ErrMethodNotFound},
		{"handler api error", `{"jsonrpc":"2.0","id":1,"method":"fail"}`, ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRPC(t, engine, tt.body)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %d, want %d", resp.Error.Code, tt.code)
			}
		})
	}
}
