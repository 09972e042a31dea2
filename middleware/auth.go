package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the identity context issued by the identity
// provider: user id, role and entity memberships travel as token claims, the
// engine never looks them up itself.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		token := bearerToken[1]
		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		role, ok := claims["role"].(string)
		if !ok || !models.Role(role).Valid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		name, _ := claims["name"].(string)

		var entityIDs []uint
		if rawIDs, ok := claims["entity_ids"].([]interface{}); ok {
			entityIDs = make([]uint, 0, len(rawIDs))
			for _, raw := range rawIDs {
				if id, ok := raw.(float64); ok {
					entityIDs = append(entityIDs, uint(id))
				}
			}
		}

		caller := &utils.Caller{
			UserID:    uint(userID),
			Name:      name,
			Role:      models.Role(role),
			EntityIDs: entityIDs,
		}

		c.Set(string(utils.CallerContextKey), caller)

		c.Next()
	}
}
