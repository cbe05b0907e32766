package routes

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/engine/watcher/mock"
	"github.com/onflow/icq-watcher/module/metrics"
)

func executeRequest(req *http.Request, api *mock.API) *httptest.ResponseRecorder {
	var b bytes.Buffer
	router := NewRouter(api, zerolog.New(&b), metrics.NewNoopCollector())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newRequest(t *testing.T, method string, path string, body string) *http.Request {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, "/v1"+path, reader)
	require.NoError(t, err)
	return req
}

func assertOKResponse(t *testing.T, req *http.Request, expectedRespBody string, api *mock.API) {
	assertResponse(t, req, http.StatusOK, expectedRespBody, api)
}

func assertResponse(t *testing.T, req *http.Request, status int, expectedRespBody string, api *mock.API) {
	rr := executeRequest(req, api)
	actualResponseBody := rr.Body.String()
	require.JSONEq(t,
		expectedRespBody,
		actualResponseBody,
		fmt.Sprintf("Failed Request: %s\nExpected JSON:\n %s \nActual JSON:\n %s\n", req.URL, expectedRespBody, actualResponseBody),
	)
	require.Equal(t, status, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func errorBody(code int, msg string) string {
	return fmt.Sprintf(`{"code":%d,"message":%q}`, code, msg)
}
