package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

// ServerError is a non-2xx reply whose body named the problem. The client
// returns it wrapped with errdef.CodeServer.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

type errorBody struct {
	Error   *string `json:"error"`
	Message *string `json:"message"`
}

func decodeFailure(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return errdef.Wrap(errdef.CodeDecode, err, "decode error response (status %d)", status)
	}
	se := &ServerError{Status: status}
	switch {
	case body.Error != nil:
		se.Message = *body.Error
	case body.Message != nil:
		se.Message = *body.Message
	default:
		se.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return errdef.Wrap(errdef.CodeServer, se, "")
}

// FailureText turns a transport error into the text shown to the user.
// Server-reported messages pass through untouched.
func FailureText(err error) string {
	if err == nil {
		return ""
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return string(errdef.CodeOf(err))
}
