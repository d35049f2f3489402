package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/pkg/jwt"
)

const secret = "clave-de-prueba"

func TestParseClaims_DevuelveUsuarioRolYEmisor(t *testing.T) {
	tok, err := jwt.Generate(secret, 7, "recepcion", "clinica-api", 30)
	require.NoError(t, err)

	c, err := jwt.ParseClaims(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, "recepcion", c.Role)
	assert.Equal(t, "clinica-api", c.Issuer)
	assert.Equal(t, "7", c.Subject)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", 1, "admin", "x", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParseClaims_RechazaAlgoritmoNone(t *testing.T) {
	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"user_id": 1, "role": "admin", "exp": 4102444800})
	tok, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwt.ParseClaims(secret, tok)
	assert.Error(t, err, "solo se aceptan tokens HS256")
}

func TestParseClaims_RechazaTokenSinVencimiento(t *testing.T) {
	raw := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"user_id": 1, "role": "admin"})
	tok, err := raw.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = jwt.ParseClaims(secret, tok)
	assert.Error(t, err, "exp es obligatorio")
}

func TestParseClaims_RechazaTokenSinUsuario(t *testing.T) {
	tok, err := jwt.Generate(secret, 0, "admin", "x", 5)
	require.NoError(t, err)

	_, err = jwt.ParseClaims(secret, tok)
	assert.Error(t, err)
}
