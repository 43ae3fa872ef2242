package handlers

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP resolves the caller's address: first entry of X-Forwarded-For when
// present, otherwise the socket peer, with the IPv4-mapped prefix stripped.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return stripMappedPrefix(first)
		}
	}
	host, _, errSplit := net.SplitHostPort(c.Request.RemoteAddr)
	if errSplit != nil {
		host = c.Request.RemoteAddr
	}
	return stripMappedPrefix(host)
}

func stripMappedPrefix(address string) string {
	return strings.TrimPrefix(address, "::ffff:")
}
