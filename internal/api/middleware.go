package api

import (
	"github.com/gin-gonic/gin"
)

const actingUserKey = "actingUserID"

// ActingUser extracts the acting user id supplied by the hosting
// environment. Authentication itself happens upstream; the id arrives
// as an opaque header value.
func ActingUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(actingUserKey, c.GetHeader("X-User-ID"))
		c.Next()
	}
}

// actingUserID returns the acting user id set by the ActingUser middleware
func actingUserID(c *gin.Context) string {
	return c.GetString(actingUserKey)
}

// CORS returns a middleware that handles CORS
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-User-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Recovery returns a middleware that recovers from panics
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
