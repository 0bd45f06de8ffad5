// Package dto defines request and response shapes for the HTTP API.
package dto

// IDResponse is the standard "created" response body.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is the standard acknowledgement body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
