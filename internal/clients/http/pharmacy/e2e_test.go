package pharmacy

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pharmacy-dispatch/internal/devserver"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/memory"
	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

type backend struct {
	client *Client
	nav    *navigation.Router
	clock  *atomic.Int64
}

func newBackend(t *testing.T) backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clock := &atomic.Int64{}
	clock.Store(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).Unix())
	now := func() time.Time { return time.Unix(clock.Load(), 0).UTC() }

	store := devserver.NewStore(devserver.WithStoreClock(now))
	require.NoError(t, devserver.Seed(store))
	issuer, err := devserver.NewIssuer("e2e-secret", 30*time.Minute, now)
	require.NoError(t, err)
	srv := httptest.NewServer(devserver.NewServer(store, issuer).Router())
	t.Cleanup(srv.Close)

	nav := navigation.NewRouter(navigation.HomePath)
	client, err := NewClient(srv.URL, WithTokenStore(memory.NewTokenStore()), WithNavigator(nav))
	require.NoError(t, err)
	return backend{client: client, nav: nav, clock: clock}
}

func TestEndToEnd_IntakeToApproval(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	order, err := b.client.CreateOrder(ctx, ordersdomain.NewOrder{
		Customer: ordersdomain.NewCustomer{FullName: "Laura Gómez", DocumentNumber: "1020", Phone: "3001234567", Address: "Cra 7 # 80-10"},
		Details:  ordersdomain.NewOrderDetails{DeliveryAddress: "Chapinero Alto, Calle 60", DoctorName: "Dr. Ruiz", PrescriptionDate: wire.NewTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))},
		Items:    []ordersdomain.NewItem{{MedicationName: "Losartán 50mg", Quantity: 1}},
	}, ordersdomain.Prescription{Filename: "receta.png", ContentType: "image/png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	require.Equal(t, logisticsdomain.ZoneChapinero, order.ZoneLabel())

	grant, err := b.client.Login(ctx, devserver.OperatorEmail, devserver.SeedPassword)
	require.NoError(t, err)
	identity, err := authdomain.DecodeToken(grant.AccessToken)
	require.NoError(t, err)
	require.True(t, identity.IsOperator())

	me, err := b.client.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, devserver.OperatorEmail, me.Email)

	pending, err := b.client.PendingValidationOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := b.client.ApproveOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusApproved, approved.Status)

	_, err = b.client.ApproveOrder(ctx, 9999)
	require.True(t, apperrors.IsNotFound(err))
}

func TestEndToEnd_ExpiredTokenLogsOut(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.client.Login(ctx, devserver.AdminEmail, devserver.SeedPassword)
	require.NoError(t, err)
	_, err = b.client.FinishedRoutes(ctx)
	require.NoError(t, err)

	b.clock.Add(int64(time.Hour / time.Second))
	_, err = b.client.FinishedRoutes(ctx)
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)

	_, ok, err := b.client.TokenStore().Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, navigation.LoginPath, b.nav.CurrentPath())
}
