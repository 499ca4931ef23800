package pharmacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	ordersports "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/ports"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
)

func (c *Client) PendingValidationOrders(ctx context.Context) ([]ordersdomain.Order, error) {
	return get[[]ordersdomain.Order](ctx, c, "PendingValidationOrders", "/pedidos/en_validacion", nil)
}

func (c *Client) ApproveOrder(ctx context.Context, orderID int64) (ordersdomain.Order, error) {
	id, err := pathID("pedido_id", orderID)
	if err != nil {
		return ordersdomain.Order{}, err
	}
	return send[ordersdomain.Order](ctx, c, "ApproveOrder", http.MethodPatch, "/pedidos/"+id+"/aprobar", nil)
}

// CreateOrder submits an intake as multipart form data: three JSON-encoded
// fields plus the prescription photo.
func (c *Client) CreateOrder(ctx context.Context, order ordersdomain.NewOrder, prescription ordersdomain.Prescription) (ordersdomain.Order, error) {
	if err := c.check(order); err != nil {
		return ordersdomain.Order{}, err
	}
	if err := prescription.Validate(); err != nil {
		return ordersdomain.Order{}, apperrors.NewValidationError([]apperrors.FieldError{
			{Loc: []any{"body", "foto_receta"}, Msg: "field required", Type: "value_error.required"},
		})
	}
	body, contentType, err := encodeIntake(order, prescription)
	if err != nil {
		return ordersdomain.Order{}, err
	}
	req := request{op: "CreateOrder", method: http.MethodPost, path: "/pedidos/", body: body, contentType: contentType}
	var created ordersdomain.Order
	err = c.do(ctx, req, &created)
	return created, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeIntake(order ordersdomain.NewOrder, prescription ordersdomain.Prescription) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct {
		name  string
		value any
	}{
		{"cliente_data", order.Customer},
		{"pedido_data", order.Details},
		{"items_data", order.Items},
	}
	for _, f := range fields {
		raw, err := json.Marshal(f.value)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := w.WriteField(f.name, string(raw)); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	contentType := strings.TrimSpace(prescription.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="foto_receta"; filename="%s"`, quoteEscaper.Replace(prescription.Filename)))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create prescription part: %w", err)
	}
	if _, err := io.Copy(part, prescription.Content); err != nil {
		return nil, "", fmt.Errorf("copy prescription: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var _ ordersports.API = (*Client)(nil)
