package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Headers set for downstream handlers from the token's claims.
const (
	HeaderUserID    = "X-User-ID"
	HeaderWorkspace = "X-Workspace"
	HeaderUserRole  = "X-User-Role"
)

// Claims is the bearer token payload: who is speaking, in which workspace, with which role.
type Claims struct {
	UserID    string `json:"user_id"`
	Workspace string `json:"workspace"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates HS256 bearer tokens. Requests missing user_id or workspace are rejected.
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// Never trust identity headers sent by the client.
			ctx.Request.Header.Del(HeaderUserID)
			ctx.Request.Header.Del(HeaderWorkspace)
			ctx.Request.Header.Del(HeaderUserRole)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}
			if claims.UserID == "" || claims.Workspace == "" {
				logger.Warn("jwt token missing identity claims")
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set(HeaderUserID, claims.UserID)
			ctx.Request.Header.Set(HeaderWorkspace, claims.Workspace)
			if claims.Role != "" {
				ctx.Request.Header.Set(HeaderUserRole, claims.Role)
			}

			next(ctx)
		}
	}
}

// IssueToken signs claims with secret. Used by the CLI to mint tokens for adapters.
func IssueToken(secret string, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
