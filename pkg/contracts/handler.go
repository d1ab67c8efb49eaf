// Package contracts holds the interfaces the shared application shell
// expects from each domain.
package contracts

import "github.com/julienschmidt/httprouter"

// Handler registers a domain's routes on the shared router. Every HTTP
// service (rooms, deals, bookings, invoices) plugs into the application
// through this interface.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
