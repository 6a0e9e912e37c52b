package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a group of tenant routes mounted by app.Application behind the
// shared middleware stack.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
