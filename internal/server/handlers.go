package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/router"
)

type processRequest struct {
	Text     string `json:"text"`
	FileName string `json:"fileName,omitempty"`
	TaskType string `json:"taskType,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	hint := model.TaskType(req.TaskType)
	if req.TaskType != "" && !hint.IsValid() {
		respondError(w, http.StatusBadRequest, "unknown task type: "+req.TaskType)
		return
	}

	result, err := s.deps.Orchestrator.Execute(r.Context(), router.Request{
		Text:     req.Text,
		FileName: req.FileName,
		FileSize: req.FileSize,
		Hint:     hint,
	})
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := s.deps.Expenses.ListExpensePage(r.Context(), page, limit)
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"expenses": result.Expenses,
		"total":    result.Total,
	})
}

func (s *Server) handleUpsertExpense(w http.ResponseWriter, r *http.Request) {
	var expense model.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	if err := expense.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.deps.Expenses.UpsertExpense(r.Context(), expense); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"expense": expense})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.deps.Expenses.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"expense": expense})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Expenses.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	flags, err := s.deps.Anomalies.Run(r.Context())
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"flags": flags})
}

func (s *Server) handleListFlags(w http.ResponseWriter, r *http.Request) {
	severity := model.Severity(r.URL.Query().Get("severity"))
	flags, err := s.deps.Flags.ListFlags(r.Context(), severity)
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"flags": flags})
}

func (s *Server) handleGetFlag(w http.ResponseWriter, r *http.Request) {
	flag, err := s.deps.Flags.GetFlag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"flag": flag})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FlagID string `json:"flagId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FlagID == "" {
		respondError(w, http.StatusBadRequest, "flagId is required")
		return
	}

	explanation, err := s.deps.Anomalies.Explain(r.Context(), req.FlagID)
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

func (s *Server) handleAggregateMetrics(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"providers": s.deps.Metrics.Aggregate()})
}

func (s *Server) handleMetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	respondJSON(w, http.StatusOK, map[string]any{"metrics": s.deps.Metrics.Recent(limit)})
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, _ *http.Request) {
	text, rules := s.deps.Policy.Policy()
	respondJSON(w, http.StatusOK, map[string]any{"policyText": text, "rules": rules})
}

func (s *Server) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PolicyText string `json:"policyText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PolicyText == "" {
		respondError(w, http.StatusBadRequest, "policyText is required")
		return
	}

	rules := s.deps.Policy.SetPolicy(r.Context(), req.PolicyText)
	respondJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handleEvaluatePolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpenseID string `json:"expenseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExpenseID == "" {
		respondError(w, http.StatusBadRequest, "expenseId is required")
		return
	}

	expense, err := s.deps.Expenses.GetExpense(r.Context(), req.ExpenseID)
	if err != nil {
		respondFromError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s.deps.Policy.Evaluate(r.Context(), *expense))
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"providers": s.deps.Registry.Statuses()})
}
