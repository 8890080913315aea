package http

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// This file follows the layout oapi-codegen emits for "types,chi-server,spec"
// against openapi.yaml. Keep the two in step: TestAPI_RoutesMatchDocument
// fails when a path or method drifts.

//go:embed openapi.yaml
var openapiYAML []byte

// CreateRequest is the body of POST /nodes.
type CreateRequest struct {
	ID   string `json:"id"`
	Kind string `json:"kind,omitempty"`
}

// CreateNodeJSONRequestBody defines body for CreateNode for application/json ContentType.
type CreateNodeJSONRequestBody = CreateRequest

// ListEventsParams defines parameters for ListEvents.
type ListEventsParams struct {
	// Limit returns only the newest N events.
	Limit *int64 `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /nodes)
	ListNodes(w http.ResponseWriter, r *http.Request)
	// (POST /nodes)
	CreateNode(w http.ResponseWriter, r *http.Request)
	// (DELETE /nodes/{id})
	ReleaseNode(w http.ResponseWriter, r *http.Request, id string)
	// (GET /nodes/{id})
	GetNode(w http.ResponseWriter, r *http.Request, id string)
	// (POST /nodes/{id}/attach)
	AttachNode(w http.ResponseWriter, r *http.Request, id string)
	// (POST /nodes/{id}/detach)
	DetachNode(w http.ResponseWriter, r *http.Request, id string)
	// (GET /released)
	ListReleased(w http.ResponseWriter, r *http.Request)
	// (GET /events)
	ListEvents(w http.ResponseWriter, r *http.Request, params ListEventsParams)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerInterfaceWrapper binds parameters and calls the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) ListNodes(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListNodes(w, r)
}

func (siw *ServerInterfaceWrapper) CreateNode(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateNode(w, r)
}

func (siw *ServerInterfaceWrapper) ReleaseNode(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.bindID(w, r); ok {
		siw.Handler.ReleaseNode(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) GetNode(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.bindID(w, r); ok {
		siw.Handler.GetNode(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) AttachNode(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.bindID(w, r); ok {
		siw.Handler.AttachNode(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) DetachNode(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.bindID(w, r); ok {
		siw.Handler.DetachNode(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) ListReleased(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListReleased(w, r)
}

func (siw *ServerInterfaceWrapper) ListEvents(w http.ResponseWriter, r *http.Request) {
	var params ListEventsParams
	err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	siw.Handler.ListEvents(w, r, params)
}

func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	}

	r.Get("/nodes", wrapper.ListNodes)
	r.Post("/nodes", wrapper.CreateNode)
	r.Delete("/nodes/{id}", wrapper.ReleaseNode)
	r.Get("/nodes/{id}", wrapper.GetNode)
	r.Post("/nodes/{id}/attach", wrapper.AttachNode)
	r.Post("/nodes/{id}/detach", wrapper.DetachNode)
	r.Get("/released", wrapper.ListReleased)
	r.Get("/events", wrapper.ListEvents)

	return r
}

func rawSpec() ([]byte, error) {
	return openapiYAML, nil
}

// GetSwagger parses the embedded OpenAPI document and resolves its references.
func GetSwagger() (*openapi3.T, error) {
	spec, err := rawSpec()
	if err != nil {
		return nil, err
	}
	doc, err := openapi3.NewLoader().LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI document: %w", err)
	}
	return doc, nil
}
