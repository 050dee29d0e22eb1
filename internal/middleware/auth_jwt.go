package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/access"

	"github.com/labstack/echo/v4"
)

const CtxCallerKey = "caller" // access.Caller

// Bearerトークンを検証してCallerにする約束（auth.JWTIssuerが実装）
type TokenParser interface {
	Parse(raw string) (access.Caller, error)
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			caller, err := parser.Parse(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxCallerKey, caller)

			return next(c)
		}
	}
}

// AuthJWTが保存したCallerを取り出す
func CallerFrom(c echo.Context) (access.Caller, bool) {
	caller, ok := c.Get(CtxCallerKey).(access.Caller)
	if !ok || caller.UserID <= 0 {
		return access.Caller{}, false
	}
	return caller, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
