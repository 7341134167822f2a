package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// JSON creates an application/json response with 200 OK status.
// The value is encoded eagerly so encoding failures surface as a handler error:
//
//	return response.JSON(user)
func JSON(v any) (*handler.Response, error) {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus creates an application/json response with custom status code.
// A zero status resolves to 204 for nil data and 200 otherwise.
func JSONWithStatus(v any, status int) (*handler.Response, error) {
	if status == 0 {
		if v == nil {
			status = http.StatusNoContent
		} else {
			status = http.StatusOK
		}
	}

	resp := handler.NewResponse(status).SetHeader("Content-Type", contentTypeJSON)

	switch status {
	case http.StatusNoContent, http.StatusNotModified:
		return resp, nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode json response: %w", err)
	}

	return resp.SetBody(buf.Bytes()), nil
}
