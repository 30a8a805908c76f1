package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"polaris-hq/polaris/pkg/lifecycle"
	"polaris-hq/polaris/pkg/policy"
	"polaris-hq/polaris/pkg/simulate"
)

// decideRequest is one agent action awaiting authorization.
type decideRequest struct {
	Agent   string                 `json:"agent"`
	Action  string                 `json:"action"`
	Context map[string]interface{} `json:"context"`
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if req.Agent == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "agent and action are required")
		return
	}

	start := time.Now()
	decision := s.engine.Decide(req.Agent, req.Action, req.Context)
	elapsed := time.Since(start)

	version := s.engine.ActiveVersion()
	if s.recorder != nil {
		cost := -1.0 // unmeasured
		if decision.CostEstimate > 0 {
			cost = decision.CostEstimate
		}
		s.recorder.RecordDecision(version, decision.Effect, cost, false)
	}
	if s.metrics != nil {
		s.metrics.Decision().Record(version, string(decision.Effect), decision.RuleID, elapsed)
	}

	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := s.manager.Store().List(r.Context())
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bundles": bundles,
		"count":   len(bundles),
	})
}

func (s *Server) handleGetBundle(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.manager.Store().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

type activateRequest struct {
	ApprovalID  string `json:"approval_id"`
	ActivatedBy string `json:"activated_by"`
	CanaryPct   int    `json:"canary_pct"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	// The outgoing bundle is the canary's cost baseline, so its version has
	// to be captured before activation replaces it.
	previous := s.engine.ActiveVersion()

	bundle, err := s.manager.Activate(r.Context(), lifecycle.ActivateRequest{
		BundleID:    r.PathValue("id"),
		ApprovalID:  req.ApprovalID,
		ActivatedBy: req.ActivatedBy,
		CanaryPct:   req.CanaryPct,
	})
	if err != nil {
		s.recordLifecycleOutcome("activate", err)
		writeLifecycleError(w, err)
		return
	}
	s.recordLifecycleOutcome("activate", nil)
	if s.metrics != nil && !bundle.FullyPromoted() {
		s.metrics.Lifecycle().SetActiveCanaryPct(bundle.CanaryPct)
	}
	if s.recorder != nil && previous != "" && previous != bundle.Version {
		s.recorder.SetBaseline(previous)
	}

	writeJSON(w, http.StatusOK, bundle)
}

type checkGatesRequest struct {
	Metrics lifecycle.GateMetrics `json:"metrics"`
}

func (s *Server) handleCheckGates(w http.ResponseWriter, r *http.Request) {
	var req checkGatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	result, err := s.manager.CheckGates(r.Context(), r.PathValue("id"), req.Metrics)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.Lifecycle().RecordGateCheck(result.Passed)
	}
	writeJSON(w, http.StatusOK, result)
}

type promoteRequest struct {
	TargetPct int `json:"target_pct"`
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	bundle, err := s.manager.Promote(r.Context(), r.PathValue("id"), req.TargetPct)
	if err != nil {
		s.recordLifecycleOutcome("promote", err)
		writeLifecycleError(w, err)
		return
	}
	s.recordLifecycleOutcome("promote", nil)
	if s.metrics != nil {
		pct := bundle.CanaryPct
		if bundle.FullyPromoted() {
			pct = 0 // no in-flight canary anymore
		}
		s.metrics.Lifecycle().SetActiveCanaryPct(pct)
	}

	writeJSON(w, http.StatusOK, bundle)
}

type rollbackRequest struct {
	Reason         string `json:"reason"`
	RolledBackBy   string `json:"rolled_back_by"`
	CreateIncident bool   `json:"create_incident"`
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	result, err := s.manager.Rollback(r.Context(), lifecycle.RollbackRequest{
		BundleID:       r.PathValue("id"),
		Reason:         req.Reason,
		RolledBackBy:   req.RolledBackBy,
		CreateIncident: req.CreateIncident,
	})
	if err != nil {
		s.recordLifecycleOutcome("rollback", err)
		writeLifecycleError(w, err)
		return
	}
	s.recordLifecycleOutcome("rollback", nil)
	if s.metrics != nil {
		s.metrics.Lifecycle().SetActiveCanaryPct(0)
	}
	if s.recorder != nil {
		// The reinstated bundle is fully promoted again and becomes the
		// baseline for whatever canary comes next.
		s.recorder.SetBaseline(result.Version)
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCanaryStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.manager.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// simulateRequest selects a case dataset and the candidate rules to replay.
type simulateRequest struct {
	Rules          []*policy.PolicyRule `json:"rules"`
	Dataset        string               `json:"dataset"`
	Seed           int64                `json:"seed"`
	SyntheticCount int                  `json:"synthetic_count"`
	CustomCases    []policy.SimCase     `json:"custom_cases"`
}

func (s *Server) resolveDataset(dataset string, seed int64, count int, custom []policy.SimCase) ([]policy.SimCase, error) {
	switch dataset {
	case "", "fixtures":
		return simulate.Fixtures(), nil
	case "synthetic":
		if count <= 0 {
			count = simulate.DefaultSyntheticCount
		}
		if count > s.config.Simulation.MaxSyntheticCount {
			return nil, fmt.Errorf("synthetic_count %d exceeds the maximum %d",
				count, s.config.Simulation.MaxSyntheticCount)
		}
		if seed == 0 {
			seed = simulate.DefaultSyntheticSeed
		}
		return simulate.GenerateSynthetic(count, seed), nil
	case "custom_cases":
		if len(custom) == 0 {
			return nil, fmt.Errorf("custom_cases dataset requires a non-empty custom_cases list")
		}
		return custom, nil
	default:
		return nil, fmt.Errorf("unknown dataset %q, must be fixtures, synthetic, or custom_cases", dataset)
	}
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	cases, err := s.resolveDataset(req.Dataset, req.Seed, req.SyntheticCount, req.CustomCases)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_dataset", err.Error())
		return
	}

	start := time.Now()
	report, err := s.simulator.Run(req.Rules, cases)
	if s.metrics != nil {
		s.metrics.Simulation().RecordRun("simulate", len(cases), time.Since(start), err)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cases": simulate.Fixtures(),
	})
}

type compareRequest struct {
	RulesA         []*policy.PolicyRule `json:"rules_a"`
	RulesB         []*policy.PolicyRule `json:"rules_b"`
	Dataset        string               `json:"dataset"`
	Seed           int64                `json:"seed"`
	SyntheticCount int                  `json:"synthetic_count"`
	CustomCases    []policy.SimCase     `json:"custom_cases"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	cases, err := s.resolveDataset(req.Dataset, req.Seed, req.SyntheticCount, req.CustomCases)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_dataset", err.Error())
		return
	}

	start := time.Now()
	comparison, err := s.simulator.Compare(req.RulesA, req.RulesB, cases)
	if s.metrics != nil {
		s.metrics.Simulation().RecordRun("compare", len(cases), time.Since(start), err)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"active_version": s.engine.ActiveVersion(),
	})
}

func (s *Server) recordLifecycleOutcome(op string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		var actErr *lifecycle.ActivationError
		if errors.As(err, &actErr) {
			outcome = string(actErr.Reason)
		}
	}
	switch op {
	case "activate":
		s.metrics.Lifecycle().RecordActivation(outcome)
	case "promote":
		s.metrics.Lifecycle().RecordPromotion(outcome)
	case "rollback":
		s.metrics.Lifecycle().RecordRollback(outcome)
	}
}
