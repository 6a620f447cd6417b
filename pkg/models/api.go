package models

// APIError is the body of every non-2xx HTTP response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DeleteResponse is the body of a successful DELETE.
type DeleteResponse struct {
	Message string `json:"message"`
}

// ReadOnlyStatus reports or sets maintenance mode.
type ReadOnlyStatus struct {
	ReadOnly bool `json:"readOnly"`
}

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status   string `json:"status"`
	Store    string `json:"store"`
	ReadOnly bool   `json:"readOnly"`
	Time     int64  `json:"time"`
}

// Machine codes that are not validation codes.
const (
	CodeNotFound          = "not_found"
	CodeInvalidIdentifier = "invalid_identifier"
	CodeInvalidJSON       = "invalid_json"
	CodeReadOnly          = "read_only"
	CodeInternal          = "internal"
)

const DeletedMessage = "Overlay deleted successfully"
