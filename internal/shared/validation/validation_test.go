package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

type prescription struct {
	Doctor string    `json:"nombre_medico" validate:"required"`
	Issued wire.Time `json:"fecha_receta" validate:"required"`
}

type intake struct {
	Details prescription `json:"pedido_data"`
	Units   int          `json:"cantidad" validate:"gte=1"`
}

func TestCheck_ReportsJSONPaths(t *testing.T) {
	err := Check(New(), intake{})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Fields, 3)
	require.Equal(t, "body -> pedido_data -> nombre_medico", apiErr.Fields[0].Path())
	require.Equal(t, "body -> pedido_data -> fecha_receta", apiErr.Fields[1].Path())
	require.Equal(t, "ensure this value is greater than or equal to 1", apiErr.Fields[2].Msg)
}

func TestCheck_AcceptsValidPayload(t *testing.T) {
	payload := intake{Details: prescription{Doctor: "Gil", Issued: wire.NewTime(time.Now())}, Units: 2}
	require.NoError(t, Check(New(), payload))
}

func TestFieldErrors_IgnoresOtherErrors(t *testing.T) {
	_, ok := FieldErrors(errors.New("boom"))
	require.False(t, ok)
}
