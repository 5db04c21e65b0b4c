package contracts

import "net/http"

// Handler mounts a service's routes on the API mux.
type Handler interface {
	RegisterRoutes(mux *http.ServeMux)
}
