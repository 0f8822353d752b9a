package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

type query struct {
	Limit    *int   `form:"limit" validate:"omitempty,min=1,max=1000"`
	OrderDir string `form:"order_dir" validate:"omitempty,oneof=asc desc"`
	Name     string `form:"name"`
}

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("numero_pi", "  ", v)
	require.Equal(t, Violations{"numero_pi": "required"}, v)

	v = Violations{}
	Required("numero_pi", "100", v)
	require.True(t, v.Empty())
}

func TestAddKeepsFirstCode(t *testing.T) {
	v := Violations{}
	v.Add("limit", "invalid_format")
	v.Add("limit", "out_of_range")
	require.Equal(t, "invalid_format", v["limit"])
}

func TestFromValidator(t *testing.T) {
	limit := 5000
	q := query{Limit: &limit, OrderDir: "sideways"}

	v := Violations{}
	require.NoError(t, FromValidator(NewValidator().Struct(q), v))
	require.Equal(t, Violations{"limit": "out_of_range", "order_dir": "invalid_choice"}, v)

	v = Violations{}
	require.NoError(t, FromValidator(NewValidator().Struct(query{}), v))
	require.True(t, v.Empty())
}

func TestFromDecoder(t *testing.T) {
	var q query
	err := NewDecoder().Decode(&q, url.Values{"limit": {"ten"}, "name": {"ok"}})
	require.Error(t, err)

	v := Violations{}
	require.NoError(t, FromDecoder(err, v))
	require.Equal(t, Violations{"limit": "invalid_format"}, v)
	require.Equal(t, "ok", q.Name)
}
