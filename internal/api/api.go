// Package api holds the HTTP handlers of the recipe catalog.
package api

import "github.com/gin-gonic/gin"

// chain appends handler to a copy of middleware
func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, handler)
}
