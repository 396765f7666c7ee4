package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

var errInvalidToken = errors.New("invalid token")

// アクセストークンから取り出したログイン中ユーザー
type Principal struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

// bearerAuth用のJWT検証ミドルウェア。
// 通ればuser_id / user_role / token_versionをcontextに入れる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			p, err := ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, p.UserID)
			c.Set(CtxUserRoleKey, string(p.Role))
			c.Set(CtxTokenVersionKey, p.TokenVersion)

			return next(c)
		}
	}
}

// "Bearer xxx" からトークンを抜く
func bearerToken(authz string) (string, bool) {
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ParseAccessToken はHS256の署名と期限を確認してclaimsを取り出す。
func ParseAccessToken(secret []byte, raw string) (Principal, error) {
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, errInvalidToken
	}

	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return Principal{}, errInvalidToken
	}

	//CUSTOMER/ADMIN以外は拒否
	role, _ := claims["role"].(string)
	if !model.Role(role).Valid() {
		return Principal{}, errInvalidToken
	}

	tv, err := parseInt(claims["tv"])
	if err != nil || tv < 0 {
		return Principal{}, errInvalidToken
	}

	return Principal{UserID: userID, Role: model.Role(role), TokenVersion: tv}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// subは数値でも文字列でもよい
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		return strconv.Atoi(t)
	default:
		return 0, errors.New("invalid int")
	}
}
