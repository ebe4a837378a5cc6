package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Party errors
	CodePartyCodeInvalid Code = "PARTY_CODE_INVALID"
	CodePartyNotReady    Code = "PARTY_NOT_READY"
	CodePartyNameEmpty   Code = "PARTY_NAME_EMPTY"

	// Event errors
	CodeEventRejected  Code = "EVENT_REJECTED"
	CodeEventMalformed Code = "EVENT_MALFORMED"
	CodeEventInvalid   Code = "EVENT_INVALID"

	// Publish errors
	CodePublishFailed Code = "PUBLISH_FAILED"

	// Token errors
	CodeTokenInvalid Code = "TOKEN_INVALID"

	// Policy errors
	CodePolicyForbidden Code = "POLICY_FORBIDDEN"

	// User directory errors
	CodeUserNotFound      Code = "USER_NOT_FOUND"
	CodeUsernameEmpty     Code = "USERNAME_EMPTY"
	CodeUserAlreadyExists Code = "USER_ALREADY_EXISTS"
)

// HTTPStatus maps domain codes to HTTP status codes for the service edges.
func (c Code) HTTPStatus() int {
	switch c {
	case CodePartyCodeInvalid,
		CodePartyNameEmpty,
		CodeEventMalformed,
		CodeEventInvalid,
		CodeUsernameEmpty:
		return http.StatusBadRequest
	case CodeTokenInvalid:
		return http.StatusUnauthorized
	case CodePolicyForbidden:
		return http.StatusForbidden
	case CodePartyNotReady, CodeUserNotFound:
		return http.StatusNotFound
	case CodeEventRejected:
		return http.StatusConflict
	case CodeUserAlreadyExists:
		return http.StatusConflict
	case CodePublishFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
