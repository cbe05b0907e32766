package common

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/onflow/icq-watcher/model/icq"
)

// maxRequestBodySize bounds the body of a single API request.
const maxRequestBodySize = 1 << 20

// Request a convenience wrapper around the http request to make it easy to read request query params
type Request struct {
	*http.Request
}

func Decorate(r *http.Request) *Request {
	return &Request{Request: r}
}

// GetVar returns the value of a path variable.
func (rd *Request) GetVar(name string) string {
	return mux.Vars(rd.Request)[name]
}

// GetUint64Var parses a path variable as an unsigned integer.
func (rd *Request) GetUint64Var(name string) (uint64, error) {
	raw := rd.GetVar(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an unsigned integer", name, raw)
	}
	return value, nil
}

// Body reads the complete request body.
func (rd *Request) Body() ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(rd.Request.Body, maxRequestBodySize))
	if err != nil {
		return nil, fmt.Errorf("could not read request body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("request body must not be empty")
	}
	return body, nil
}

// GetBody decodes the JSON request body into dst.
func (rd *Request) GetBody(dst interface{}) error {
	body, err := rd.Body()
	if err != nil {
		return err
	}
	err = icq.Unmarshal(body, dst)
	if err != nil {
		return fmt.Errorf("request body contains invalid JSON: %w", err)
	}
	return nil
}
