// Package testutil holds helpers shared by admin handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/auth"
	"github.com/orris-inc/orrisdesk/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestContext builds a gin context for a handler call. A non-nil body is
// sent as JSON.
func NewTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// SetAdmin stands in for RequireAdmin. Passing no guild IDs yields an
// unscoped token.
func SetAdmin(c *gin.Context, operator string, guildIDs ...string) {
	middleware.SetAdminClaims(c, &auth.Claims{Operator: operator, GuildIDs: guildIDs})
}

func SetURLParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

func SetQueryParams(c *gin.Context, params map[string]string) {
	q := c.Request.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	c.Request.URL.RawQuery = q.Encode()
}

// APIResponse is the envelope written by utils.SuccessResponse and
// utils.ErrorResponseWithError.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
