package dto

// ListResponse sobre de listados paginados: {rows, total, page, limit}.
type ListResponse[T any] struct {
	Rows  []T `json:"rows"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
