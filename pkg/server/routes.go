package server

import "net/http"

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /policy/decide", s.handleDecide)

	mux.HandleFunc("GET /policy/bundles", s.handleListBundles)
	mux.HandleFunc("GET /policy/bundles/{id}", s.handleGetBundle)
	mux.HandleFunc("POST /policy/bundles/{id}/activate", s.handleActivate)
	mux.HandleFunc("POST /policy/bundles/{id}/check-gates", s.handleCheckGates)
	mux.HandleFunc("POST /policy/bundles/{id}/promote", s.handlePromote)
	mux.HandleFunc("POST /policy/bundles/{id}/rollback", s.handleRollback)
	mux.HandleFunc("GET /policy/bundles/{id}/canary-status", s.handleCanaryStatus)

	mux.HandleFunc("POST /policy/simulate", s.handleSimulate)
	mux.HandleFunc("GET /policy/simulate/fixtures", s.handleFixtures)
	mux.HandleFunc("POST /policy/simulate/compare", s.handleCompare)

	mux.HandleFunc("GET /health", s.handleHealth)

	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}
