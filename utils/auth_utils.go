package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/models"
)

// Caller is the per-request identity resolved by the auth middleware from the
// identity provider's token: who is asking, as what role, for which entities.
type Caller struct {
	UserID    uint        `json:"user_id"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	EntityIDs []uint      `json:"entity_ids"`
}

// MemberOf reports whether the caller belongs to the given entity. Authority
// roles do not rely on membership and always pass visibility separately.
func (c *Caller) MemberOf(entityID uint) bool {
	for _, id := range c.EntityIDs {
		if id == entityID {
			return true
		}
	}
	return false
}

type contextKey string

const CallerContextKey contextKey = "caller"

func GetCaller(c *gin.Context) *Caller {
	v, exists := c.Get(string(CallerContextKey))
	if !exists {
		return nil
	}
	if caller, ok := v.(*Caller); ok {
		return caller
	}
	return nil
}
