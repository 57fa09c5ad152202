package apierror

import "encoding/json"

// malformedResponseMessage is used when the error body cannot be parsed.
const malformedResponseMessage = "An improperly formatted error response was found."

type wireError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		Param       string `json:"param"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

// Parse builds an *Error from a raw error response body. The status code
// decides the error type unless the body names card_error explicitly.
func Parse(body []byte, status int, requestID string) *Error {
	apiErr := &Error{
		Type:       FromStatus(status),
		StatusCode: status,
		RequestID:  requestID,
	}

	var wire wireError
	if err := json.Unmarshal(body, &wire); err != nil {
		apiErr.Message = malformedResponseMessage
		return apiErr
	}

	apiErr.Code = wire.Error.Code
	apiErr.Param = wire.Error.Param
	apiErr.DeclineCode = wire.Error.DeclineCode
	apiErr.Message = wire.Error.Message
	if apiErr.Message == "" {
		apiErr.Message = malformedResponseMessage
	}
	if Type(wire.Error.Type) == TypeCard {
		apiErr.Type = TypeCard
	}
	return apiErr
}
