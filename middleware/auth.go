package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"photoshare/apperr"
	"photoshare/logger"
	"photoshare/service"
	"photoshare/session"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "photoshare_session"

const (
	actorKey        = "actor"
	tokenQueryParam = "token"
)

// SessionAuth rejects requests without a live session and stores the
// resolved service.Actor in the gin context.
func SessionAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip middleware for OPTIONS requests (CORS preflight)
		if c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		token := tokenFrom(c)
		if token == "" {
			abortWithError(c, apperr.Unauthorized("User not logged in"))
			return
		}

		sess, err := sessions.Authenticate(c.Request.Context(), token)
		if errors.Is(err, session.ErrInvalidToken) {
			abortWithError(c, apperr.Unauthorized("Session expired or invalid"))
			return
		}
		if err != nil {
			logger.Log.Error("Session lookup failed", zap.Error(err))
			abortWithError(c, apperr.Internal(err))
			return
		}

		userID, err := primitive.ObjectIDFromHex(sess.UserID)
		if err != nil {
			abortWithError(c, apperr.Unauthorized("Session expired or invalid"))
			return
		}

		SetActor(c, service.Actor{UserID: userID, SessionID: sess.ID})
		c.Next()
	}
}

// tokenFrom looks in the Authorization header, then the cookie, then the
// token query parameter.
func tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query(tokenQueryParam)
}

func SetActor(c *gin.Context, actor service.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom returns the actor set by SessionAuth, or the zero Actor on
// routes that are not behind it.
func ActorFrom(c *gin.Context) service.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}

func abortWithError(c *gin.Context, err *apperr.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err)
}
