package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// Collection paths served by the dashboard backend
const (
	PatientsPath     = "/api/patients"
	DoctorsPath      = "/api/doctors"
	AppointmentsPath = "/api/appointments"
)

// Collection is a REST collection resource: GET/POST on the path, PATCH/DELETE on path/{id}
type Collection[T entities.Entity] struct {
	client *HTTPClient
	name   string
	path   string
}

var _ providers.CollectionProvider[entities.Record] = (*Collection[entities.Record])(nil)

// NewCollection binds the collection at path to client
func NewCollection[T entities.Entity](client *HTTPClient, name, path string) *Collection[T] {
	return &Collection[T]{
		client: client,
		name:   name,
		path:   "/" + strings.Trim(path, "/"),
	}
}

// NewPatients returns the patients collection
func NewPatients(client *HTTPClient) *Collection[entities.Patient] {
	return NewCollection[entities.Patient](client, "patients", PatientsPath)
}

// NewDoctors returns the doctors collection
func NewDoctors(client *HTTPClient) *Collection[entities.Doctor] {
	return NewCollection[entities.Doctor](client, "doctors", DoctorsPath)
}

// NewAppointments returns the appointments collection
func NewAppointments(client *HTTPClient) *Collection[entities.Appointment] {
	return NewCollection[entities.Appointment](client, "appointments", AppointmentsPath)
}

// Name implements providers.CollectionProvider
func (c *Collection[T]) Name() string { return c.name }

// List implements providers.CollectionProvider
func (c *Collection[T]) List(ctx context.Context, opts providers.ListOptions) ([]T, error) {
	query := url.Values{}
	if opts.Skip > 0 {
		query.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		query.Set("search", search)
	}

	var raw json.RawMessage
	req := request{method: http.MethodGet, path: c.path, query: query}
	if err := c.client.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

// Create implements providers.CollectionProvider
func (c *Collection[T]) Create(ctx context.Context, payload any) (T, error) {
	var created T
	req, err := jsonRequest(http.MethodPost, c.path, c.path, payload)
	if err != nil {
		return created, err
	}
	if err := c.client.do(ctx, req, &created); err != nil {
		return created, err
	}
	if created.EntityID() == "" {
		var zero T
		return zero, apperrors.NewInternalError("backend returned "+c.name+" entity without id", nil)
	}
	return created, nil
}

// Update implements providers.CollectionProvider
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	path, err := c.itemPath(id)
	if err != nil {
		return err
	}
	req, err := jsonRequest(http.MethodPatch, path, c.path+"/{id}", patch)
	if err != nil {
		return err
	}
	return c.client.do(ctx, req, nil)
}

// Delete implements providers.CollectionProvider
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	path, err := c.itemPath(id)
	if err != nil {
		return err
	}
	return c.client.do(ctx, request{method: http.MethodDelete, path: path, route: c.path + "/{id}"}, nil)
}

func (c *Collection[T]) itemPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", apperrors.NewValidationError(c.name + " id is required")
	}
	return c.path + "/" + url.PathEscape(id), nil
}

// decodeList accepts a bare array or an envelope with a "data" or "items" array.
func decodeList[T entities.Entity](raw json.RawMessage) ([]T, error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	if body[0] != '[' {
		var inner []byte
		for _, key := range []string{"data", "items"} {
			if v := gjson.GetBytes(body, key); v.IsArray() {
				inner = []byte(v.Raw)
				break
			}
		}
		if inner == nil {
			return nil, apperrors.NewInternalError("unexpected list response from backend", nil)
		}
		body = inner
	}

	items := []T{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, apperrors.NewInternalError("failed to decode list response", err)
	}
	return items, nil
}
