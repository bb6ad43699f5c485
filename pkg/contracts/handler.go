package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a service's API routes on the application router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
