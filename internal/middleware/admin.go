// Package middleware holds the admin access gate: the authorization boundary
// in front of every read, stream and retrieval endpoint.
package middleware

import (
	"net"

	"github.com/mjollne/varde/internal/util"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader is the header carrying the shared admin secret
const TokenHeader = "X-Admin-Token"

// Gate authorizes a request iff the caller is loopback (the operator is
// assumed co-located and trusted) or presents the configured shared secret.
// Everything else gets a uniform 401 with no body, so the response cannot be
// used as an oracle to tell a missing token from a wrong one.
type Gate struct {
	encodedHash string // argon2id of the shared secret; empty disables remote access
}

// NewGate builds the gate from the configured shared secret. The secret is
// hashed once here and the plaintext is dropped.
func NewGate(token string) *Gate {
	if token == "" {
		util.PrintInfo("no admin token configured, admin surface is loopback-only")
		return &Gate{}
	}

	encoded, err := HashToken(token)
	if err != nil {
		// No usable hash means no remote access, never an open gate
		util.PrintErrorf("admin token hashing failed, admin surface is loopback-only: %v", err)
		return &Gate{}
	}
	return &Gate{encodedHash: encoded}
}

// Allowed evaluates the policy for one caller
func (g *Gate) Allowed(remoteIP, token string) bool {
	if ip := net.ParseIP(remoteIP); ip != nil && ip.IsLoopback() {
		return true
	}
	if g.encodedHash == "" || token == "" {
		return false
	}

	match, err := CompareTokenAndHash(token, g.encodedHash)
	if err != nil {
		return false
	}
	return match
}

// Protect is the fiber middleware form of the gate. The token is accepted via
// header or query parameter.
func (g *Gate) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			token = c.Query("token")
		}

		if !g.Allowed(c.IP(), token) {
			// Empty body: same response for missing and wrong tokens
			return c.Status(fiber.StatusUnauthorized).SendString("")
		}
		return c.Next()
	}
}
