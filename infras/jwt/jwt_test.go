package jwt_test

import (
	"testing"
	"time"

	"hotelops/config"
	"hotelops/infras/jwt"

	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "idp-shared-secret"

func sign(t *testing.T, method jwtGo.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()

	token, err := jwtGo.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func claims(email, role, issuer string, expiresIn time.Duration) jwt.Claims {
	now := time.Now()

	return jwt.Claims{
		UserID: "idp-42",
		Email:  email,
		Role:   role,
		RegisteredClaims: jwtGo.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwtGo.NewNumericDate(now),
			ExpiresAt: jwtGo.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestVerify(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.JWT.Issuer = "hotel-idp"

	verifier := jwt.New(cfg)

	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantEmail string
	}{
		{
			name:      "valid token normalizes email",
			token:     sign(t, jwtGo.SigningMethodHS256, []byte(secret), claims(" Ada@Hotel.Test ", "staff", "hotel-idp", time.Hour)),
			wantEmail: "ada@hotel.test",
		},
		{
			name:    "expired",
			token:   sign(t, jwtGo.SigningMethodHS256, []byte(secret), claims("ada@hotel.test", "staff", "hotel-idp", -time.Minute)),
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name:    "wrong secret",
			token:   sign(t, jwtGo.SigningMethodHS256, []byte("other"), claims("ada@hotel.test", "staff", "hotel-idp", time.Hour)),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "wrong algorithm",
			token:   sign(t, jwtGo.SigningMethodHS512, []byte(secret), claims("ada@hotel.test", "staff", "hotel-idp", time.Hour)),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "wrong issuer",
			token:   sign(t, jwtGo.SigningMethodHS256, []byte(secret), claims("ada@hotel.test", "staff", "elsewhere", time.Hour)),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "unknown role",
			token:   sign(t, jwtGo.SigningMethodHS256, []byte(secret), claims("ada@hotel.test", "owner", "hotel-idp", time.Hour)),
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name:    "missing email",
			token:   sign(t, jwtGo.SigningMethodHS256, []byte(secret), claims("", "guest", "hotel-idp", time.Hour)),
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name:    "garbage",
			token:   "not.a.token",
			wantErr: jwt.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.Verify(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, got.Email)
			assert.Equal(t, "idp-42", got.UserID)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = jwt.ExtractTokenFromHeader("")
	assert.ErrorIs(t, err, jwt.ErrMissingToken)

	_, err = jwt.ExtractTokenFromHeader("Basic abc")
	assert.ErrorIs(t, err, jwt.ErrBearerFormat)
}
