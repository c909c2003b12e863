package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Fields   []string `json:"fields,omitempty"`   // campos inválidos (VALIDATION)
	Redirect string   `json:"redirect,omitempty"` // destino sugerido al shell (UNAUTHENTICATED)
}

// RedirectResponse indica al shell a dónde navegar.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}
