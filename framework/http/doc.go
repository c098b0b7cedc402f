// Package http serves the admin surface of a running system: the loaded
// dependency definitions and the cache controls.
//
//	admin := http.NewAdmin(sys.DependencyIO(), sys.CachePool(), secret, logger)
//	server := http.NewServer(":8000", admin.Handler(), logger)
//	err := server.Service(ctx)
//
// Responses are JSON; successful ones are wrapped as {"data": ...}, errors
// as {"message": "..."}.
package http
