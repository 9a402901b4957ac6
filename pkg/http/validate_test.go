package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepRequest struct {
	TF    string `query:"tf" json:"tf" default:"Daily" validate:"oneof=M1 Daily"`
	Macro int    `query:"macro" json:"macro" default:"40"`
	Step  int    `query:"step" json:"step" validate:"omitempty,evenstep"`
}

func init() {
	_ = RegisterValidation("evenstep", "ERR_ODD_STEP", "%s must be even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	})
}

func bindQuery(t *testing.T, query string, req interface{}) interface{} {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+query, nil), httptest.NewRecorder())
	return ReadAndValidateRequest(c, req)
}

func TestReadAndValidateKeepsExplicitZero(t *testing.T) {
	req := &stepRequest{}
	require.Nil(t, bindQuery(t, "macro=0", req))
	assert.Equal(t, 0, req.Macro)
	assert.Equal(t, "Daily", req.TF)

	req = &stepRequest{}
	require.Nil(t, bindQuery(t, "", req))
	assert.Equal(t, 40, req.Macro)
}

func TestReadAndValidateReportsQueryNames(t *testing.T) {
	verr := bindQuery(t, "tf=H2", &stepRequest{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_ONEOF", errs[0].Code)
	assert.Equal(t, "tf", errs[0].Field)
	assert.Equal(t, "H2", errs[0].Params["value"])
}

func TestCustomRuleCodeAndMessage(t *testing.T) {
	verr := bindQuery(t, "step=3", &stepRequest{})
	errs := verr.([]ValidationError)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_ODD_STEP", errs[0].Code)
	assert.Equal(t, "step must be even", errs[0].Message)
}

func TestReadAndValidateBindFailure(t *testing.T) {
	verr := bindQuery(t, "macro=lots", &stepRequest{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	assert.Equal(t, "ERR_UNKNOWN", errs[0].Code)
}

func TestDecodeAndValidate(t *testing.T) {
	req := &stepRequest{}
	require.Nil(t, DecodeAndValidate(context.Background(), []byte(`{"tf":"M1","macro":0}`), req))
	assert.Equal(t, "M1", req.TF)
	assert.Equal(t, 0, req.Macro)

	verr := DecodeAndValidate(context.Background(), []byte(`{`), &stepRequest{})
	errs := verr.([]ValidationError)
	assert.Equal(t, "ERR_MALFORMED_JSON", errs[0].Code)
}

func TestRegisterValidationRejectsBadRule(t *testing.T) {
	require.Error(t, RegisterValidation("", "ERR_EMPTY", "%s", func(validator.FieldLevel) bool { return true }))
	require.Error(t, RegisterValidation("nilrule", "ERR_NIL", "%s", nil))

	rulesMu.RLock()
	_, ok := customRules["nilrule"]
	rulesMu.RUnlock()
	assert.False(t, ok)
}
