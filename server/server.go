// Package server exposes scale set operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/libopenstorage/vmssops"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	resourceGroupVar = "resourceGroup"
	nameVar          = "name"

	scaleSetPath = "/v1/scalesets/{" + resourceGroupVar + "}/{" + nameVar + "}"
)

// ImageRequest is the body of an image update request.
type ImageRequest struct {
	ID        string `json:"id,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Offer     string `json:"offer,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Version   string `json:"version,omitempty"`
}

// InstancesRequest is the body of an instance update request.
type InstancesRequest struct {
	InstanceIDs string `json:"instanceIds"`
}

// OutcomeResponse reports the outcome of an operation.
type OutcomeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ImageKindResponse reports the image kind a scale set is deployed with.
type ImageKindResponse struct {
	CustomImage bool `json:"customImage"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server handles scale set requests.
type Server struct {
	client       vmssops.ScaleSetClient
	orchestrator *vmssops.Orchestrator
	env          vmssops.Expander
	gatherer     prometheus.Gatherer
}

// New returns a server issuing its requests through client and
// orchestrator. Placeholders in request bodies are resolved with env.
// Metrics are served from gatherer if it is not nil.
func New(
	client vmssops.ScaleSetClient,
	orchestrator *vmssops.Orchestrator,
	env vmssops.Expander,
	gatherer prometheus.Gatherer,
) *Server {
	return &Server{
		client:       client,
		orchestrator: orchestrator,
		env:          env,
		gatherer:     gatherer,
	}
}

// Route is a path, method and handler for a REST endpoint.
type Route struct {
	verb string
	path string
	fn   func(http.ResponseWriter, *http.Request)
}

// GetVerb returns the HTTP method of the route.
func (r *Route) GetVerb() string {
	return r.verb
}

// GetPath returns the path template of the route.
func (r *Route) GetPath() string {
	return r.path
}

// Routes returns the scale set endpoints.
func (s *Server) Routes() []*Route {
	return []*Route{
		{verb: http.MethodGet, path: scaleSetPath + "/image", fn: s.getImageKind},
		{verb: http.MethodPut, path: scaleSetPath + "/image", fn: s.updateImage},
		{verb: http.MethodPost, path: scaleSetPath + "/instances", fn: s.updateInstances},
	}
}

// Router returns the HTTP handler of the server.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	for _, v := range s.Routes() {
		router.Methods(v.verb).Path(v.path).HandlerFunc(v.fn)
	}
	if s.gatherer != nil {
		router.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	logrus.Warnf("Not found: %+v ", r.URL)
	http.NotFound(w, r)
}

// ListenAndServe serves requests on address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	srv := &http.Server{Addr: address, Handler: s.Router()}
	errCh := make(chan error, 1)
	go func() {
		logrus.Printf("Starting REST service on %s", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logrus.Infof("Shutting down server")
		return srv.Shutdown(context.Background())
	}
}

func (s *Server) getImageKind(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	isCustom, err := vmssops.IsCustomImage(r.Context(), s.client, vars[resourceGroupVar], vars[nameVar])
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, ImageKindResponse{CustomImage: isCustom})
}

func (s *Server) updateImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := vmssops.ValidateImageFields(req.ID, req.Publisher, req.Offer, req.SKU, req.Version); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	vars := mux.Vars(r)
	desired := vmssops.NewImageSpec(req.ID, req.Publisher, req.Offer, req.SKU, req.Version)
	outcome, err := s.orchestrator.UpdateImage(r.Context(), vars[resourceGroupVar], vars[nameVar], desired, s.env)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeOutcome(w, outcome)
}

func (s *Server) updateInstances(w http.ResponseWriter, r *http.Request) {
	var req InstancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if vmssops.IsBlank(req.InstanceIDs) {
		writeError(w, http.StatusBadRequest, &vmssops.ErrInvalidConfig{Field: "instanceIds"})
		return
	}

	vars := mux.Vars(r)
	outcome, err := s.orchestrator.UpdateInstances(r.Context(), vars[resourceGroupVar], vars[nameVar], req.InstanceIDs, s.env)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeOutcome(w, outcome)
}

func writeOutcome(w http.ResponseWriter, outcome vmssops.Outcome) {
	status := http.StatusOK
	switch outcome.Status {
	case vmssops.ResourceNotFound:
		status = http.StatusNotFound
	case vmssops.ProviderError:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, OutcomeResponse{Status: outcome.Status.String(), Message: outcome.Message})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Warnf("Failed to write response: %v", err)
	}
}
