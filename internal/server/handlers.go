package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// ScenarioResponse is one named scenario rate.
type ScenarioResponse struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// requestConfig clones the server config and applies query overrides.
func (s *Server) requestConfig(q url.Values) (*contract.Config, error) {
	cfg := s.cfg.Clone()
	if v := q.Get("location"); v != "" {
		cfg.Location = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"window", &cfg.Window},
		{"lag", &cfg.LagDays},
		{"horizon", &cfg.HorizonDays},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer (received %q)", p.name, v)
		}
		*p.dst = n
	}

	if err := contract.RevalidatePipeline(cfg, q.Get("rate")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// evaluate runs the pipeline and records its duration.
func evaluate(endpoint string, cfg *contract.Config, records []schema.RawRecord) (schema.OutputSeries, error) {
	start := time.Now()
	params, records := cfg.PipelineParams(cfg.Location, records)
	out, err := core.Run(records, params)
	pipelineDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return out, err
}

// handleLocations lists locations present in the dataset.
func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	data, err := s.dataset(r.Context())
	if err != nil {
		Unavailable(w, err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, data.Locations)
}

// handleScenarios lists the configured scenario rates by name.
func (s *Server) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	names := core.ScenarioNames(s.cfg.Scenarios)
	out := make([]ScenarioResponse, 0, len(names))
	for _, name := range names {
		out = append(out, ScenarioResponse{Name: name, Rate: s.cfg.Scenarios[name]})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRecords returns the loaded daily series for one location.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = s.cfg.Location
	}
	data, err := s.dataset(r.Context())
	if err != nil {
		Unavailable(w, err.Error(), r.URL.Path)
		return
	}

	params, records := s.cfg.PipelineParams(location, data.Records)
	series, err := core.Load(records, params.Location)
	if err != nil {
		PipelineError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// handleProjection evaluates the full pipeline for the query parameters.
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r.URL.Query())
	if err != nil {
		BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	data, err := s.dataset(r.Context())
	if err != nil {
		Unavailable(w, err.Error(), r.URL.Path)
		return
	}

	out, err := evaluate("projection", cfg, data.Records)
	if err != nil {
		PipelineError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
