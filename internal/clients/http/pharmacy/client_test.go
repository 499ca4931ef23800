package pharmacy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/memory"
	deliverydomain "github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

type fixture struct {
	client *Client
	store  *memory.TokenStore
	nav    *navigation.Router
	hooks  *atomic.Int32
}

func newFixture(t *testing.T, handler http.HandlerFunc, start string) fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := memory.NewTokenStore()
	nav := navigation.NewRouter(start)
	hooks := &atomic.Int32{}
	client, err := NewClient(srv.URL+"/", WithTokenStore(store), WithNavigator(nav), WithOnUnauthorized(func() { hooks.Add(1) }))
	require.NoError(t, err)
	return fixture{client: client, store: store, nav: nav, hooks: hooks}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
	_, err = NewClient("not a url")
	require.Error(t, err)
}

func TestDo_AttachesBearerOnlyWhenTokenPresent(t *testing.T) {
	seen := make(chan string, 2)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NotEmpty(t, r.Header.Get(RequestIDHeader))
		writeJSON(w, http.StatusOK, []logisticsdomain.Zone{{ID: 1, Name: "NORTE"}})
	}, navigation.HomePath)
	ctx := context.Background()

	_, err := f.client.Zones(ctx)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, "abc"))
	zones, err := f.client.Zones(ctx)
	require.NoError(t, err)
	require.Equal(t, "NORTE", zones[0].Name)

	require.Equal(t, "", <-seen)
	require.Equal(t, "Bearer abc", <-seen)
}

func TestDo_UnauthorizedLogsOutGlobally(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	}, "/pedidos")
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, "stale"))

	_, err := f.client.PendingValidationOrders(ctx)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.EqualError(t, err, "Could not validate credentials")

	_, ok, _ := f.store.Get(ctx)
	require.False(t, ok)
	require.Equal(t, navigation.LoginPath, f.nav.CurrentPath())
	require.Equal(t, []string{navigation.LoginPath}, f.nav.History())
	require.EqualValues(t, 1, f.hooks.Load())
}

func TestDo_UnauthorizedOnLoginViewDoesNotNavigate(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Email o contraseña incorrectos"})
	}, navigation.LoginPath)

	_, err := f.client.Login(context.Background(), "ana@farmacia.co", "mala")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.EqualError(t, err, "Email o contraseña incorrectos")
	require.Empty(t, f.nav.History())
	require.EqualValues(t, 1, f.hooks.Load())
}

func TestDo_ErrorTaxonomy(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logistica/mi_ruta_activa":
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No tienes una ruta activa asignada."})
		case "/cierre/rutas_finalizadas":
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Acceso denegado."})
		default:
			writeJSON(w, http.StatusUnprocessableEntity, apperrors.ValidationBody{Detail: []apperrors.FieldError{
				{Loc: []any{"body", "zona"}, Msg: "field required"},
			}})
		}
	}, navigation.HomePath)
	ctx := context.Background()

	_, err := f.client.MyActiveRoute(ctx)
	require.True(t, apperrors.IsNotFound(err))
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.NotEmpty(t, apiErr.RequestID)

	_, err = f.client.FinishedRoutes(ctx)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.client.CreatePickWave(ctx)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.EqualError(t, err, "body -> zona: field required")
	require.EqualValues(t, 0, f.hooks.Load())
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Zones(context.Background())
	require.ErrorIs(t, err, apperrors.ErrTransport)
	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, "/zonas/", transportErr.Path)
}

func TestLogin_StoresToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "ana@farmacia.co", r.PostForm.Get("username"))
		require.Equal(t, "secreta", r.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "jwt", "token_type": "bearer"})
	}, navigation.LoginPath)
	ctx := context.Background()

	grant, err := f.client.Login(ctx, "ana@farmacia.co", "secreta")
	require.NoError(t, err)
	require.Equal(t, "bearer", grant.TokenType)
	token, ok, err := f.store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "jwt", token)

	require.NoError(t, f.client.Logout(ctx))
	_, ok, _ = f.store.Get(ctx)
	require.False(t, ok)
}

func TestReadyPackages(t *testing.T) {
	var calls atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/logistica/paquetes/listos", r.URL.Path)
		require.Equal(t, "CHAPINERO", r.URL.Query().Get("zona"))
		writeJSON(w, http.StatusOK, []logisticsdomain.Package{{ID: 3, Status: logisticsdomain.PackageInWarehouse}})
	}, navigation.HomePath)
	ctx := context.Background()

	empty, err := f.client.ReadyPackages(ctx, "  ")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
	require.EqualValues(t, 0, calls.Load())

	packages, err := f.client.ReadyPackages(ctx, "CHAPINERO")
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.EqualValues(t, 1, calls.Load())
}

func TestValidationFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{})
	}, navigation.HomePath)
	ctx := context.Background()

	_, err := f.client.CreateRouteSheet(ctx, logisticsdomain.NewRouteSheet{AgentID: 1, Zone: " "})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.EqualError(t, err, "body -> zona: field required")

	_, err = f.client.MarkFailed(ctx, 4, deliverydomain.FailureReport{})
	require.EqualError(t, err, "body -> motivo_fallo: field required")

	_, err = f.client.ReceiveBatch(ctx, logisticsdomain.NewBatch{SupplierLot: "L-1", ReceivedQuantity: 0, MedicationID: 2})
	require.EqualError(t, err, "body -> cantidad_recibida: ensure this value is greater than or equal to 1")

	_, err = f.client.ApproveOrder(ctx, 0)
	require.Error(t, err)
	require.EqualValues(t, 0, calls.Load())
}

func TestCreateOrder_Multipart(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pedidos/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		var customer ordersdomain.NewCustomer
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("cliente_data")), &customer))
		require.Equal(t, "Ana Ruiz", customer.FullName)
		var items []ordersdomain.NewItem
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("items_data")), &items))
		require.Len(t, items, 1)
		require.Contains(t, r.FormValue("pedido_data"), "fecha_receta")

		file, header, err := r.FormFile("foto_receta")
		require.NoError(t, err)
		defer file.Close()
		raw, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "receta.jpg", header.Filename)
		require.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		require.Equal(t, "jpeg-bytes", string(raw))

		zone := "NORTE"
		writeJSON(w, http.StatusCreated, ordersdomain.Order{ID: 12, Status: ordersdomain.StatusPendingValidation, Zone: &zone})
	}, "/nuevo-pedido")

	order := ordersdomain.NewOrder{
		Customer: ordersdomain.NewCustomer{FullName: "Ana Ruiz", DocumentNumber: "52", Phone: "300", Address: "Calle 170"},
		Details:  ordersdomain.NewOrderDetails{DeliveryAddress: "Calle 170", DoctorName: "Dr. Gil", PrescriptionDate: wire.NewTime(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))},
		Items:    []ordersdomain.NewItem{{MedicationName: "Losartan", Quantity: 2}},
	}
	created, err := f.client.CreateOrder(context.Background(), order, ordersdomain.Prescription{
		Filename: "receta.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), created.ID)
	require.Equal(t, "NORTE", created.ZoneLabel())
}

func TestCreateOrder_LocalValidation(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, "/nuevo-pedido")
	ctx := context.Background()

	_, err := f.client.CreateOrder(ctx, ordersdomain.NewOrder{}, ordersdomain.Prescription{})
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Zero(t, apiErr.StatusCode)
	require.Contains(t, err.Error(), "body -> cliente_data -> nombre_completo: field required")
	require.Contains(t, err.Error(), "body -> pedido_data -> fecha_receta: field required")
	require.Contains(t, err.Error(), "body -> items_data: field required")

	valid := ordersdomain.NewOrder{
		Customer: ordersdomain.NewCustomer{FullName: "Ana", DocumentNumber: "1", Phone: "3", Address: "x"},
		Details:  ordersdomain.NewOrderDetails{DeliveryAddress: "x", DoctorName: "y", PrescriptionDate: wire.NewTime(time.Now())},
		Items:    []ordersdomain.NewItem{{MedicationName: "Losartan", Quantity: 1}},
	}
	_, err = f.client.CreateOrder(ctx, valid, ordersdomain.Prescription{})
	require.EqualError(t, err, "body -> foto_receta: field required")
}
