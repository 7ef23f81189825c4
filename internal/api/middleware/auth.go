package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
)

const (
	msgMissingToken   = "missing bearer token"
	msgInvalidToken   = "invalid or expired token"
	msgParishRequired = "parish administrator access required"
)

// Claims полезная нагрузка токена; токены выпускает внешний сервис
type Claims struct {
	UserID   int64  `json:"userId"`
	ParishID *int64 `json:"parishId,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator проверяет HS256 токены из заголовка Authorization
type Authenticator struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewAuthenticator создает проверку токенов; пустой issuer не проверяется
func NewAuthenticator(secret, issuer string, leeway time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, leeway: leeway}
}

// Parse проверяет подпись и срок действия токена
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.leeway),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("token has no userId")
	}
	return claims, nil
}

// Issue подписывает токен; используется CLI для локальной отладки и тестами
func (a *Authenticator) Issue(userID int64, parishID *int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		ParishID: parishID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Auth требует валидный Bearer токен и кладет userId и parishId в контекст
func (a *Authenticator) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			handlers.RespondUnauthorized(w, msgMissingToken)
			return
		}

		claims, err := a.Parse(strings.TrimSpace(raw))
		if err != nil {
			handlers.RespondUnauthorized(w, msgInvalidToken)
			return
		}

		ctx := WithIdentity(r.Context(), claims.UserID, claims.ParishID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireParish пропускает только токены администратора прихода
// Должен стоять после Auth
func RequireParish(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetParishID(r.Context()); !ok {
			handlers.RespondForbidden(w, msgParishRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
