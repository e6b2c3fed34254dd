package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type nameBody struct {
	Name string `json:"name"`
}

type bulkCreateBody struct {
	Items []core.Transaction `json:"items"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	params, err := ParseSummaryParams(r.URL.Query(), s.today())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sum, err := s.store.Summary(r.Context(), core.SummaryQuery{
		UserID:    currentUser(r),
		AccountID: params.AccountID,
		From:      params.From,
		To:        params.To,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary query failed",
			log.FieldOperation, log.OpBalance,
			log.FieldAccountID, params.AccountID,
			log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, sum)
}

func (s *Server) handleAPIListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context(), currentUser(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List accounts failed", log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeData(w, http.StatusOK, accounts)
}

func (s *Server) handleAPICreateAccount(w http.ResponseWriter, r *http.Request) {
	var body nameBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeAPIError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	name := sanitizeInput(body.Name)
	if err := (core.Account{Name: name}).Validate(); err != nil {
		writeAPIError(w, http.StatusUnprocessableEntity, core.CodeValidation, err.Error())
		return
	}

	account, err := s.store.CreateAccount(r.Context(), currentUser(r), name)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create account failed", log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, account)
}

func (s *Server) handleAPIListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context(), currentUser(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List categories failed", log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeData(w, http.StatusOK, categories)
}

func (s *Server) handleAPICreateCategory(w http.ResponseWriter, r *http.Request) {
	var body nameBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeAPIError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	name := sanitizeInput(body.Name)
	if err := (core.Category{Name: name}).Validate(); err != nil {
		writeAPIError(w, http.StatusUnprocessableEntity, core.CodeValidation, err.Error())
		return
	}

	category, err := s.store.CreateCategory(r.Context(), currentUser(r), name)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create category failed", log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, category)
}

func (s *Server) handleAPIBulkCreate(w http.ResponseWriter, r *http.Request) {
	var body bulkCreateBody
	if err := decodeJSON(w, r, &body); err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeDomainError(w, err)
			return
		}
		writeAPIError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if len(body.Items) == 0 {
		writeAPIError(w, http.StatusUnprocessableEntity, core.CodeValidation, "items must not be empty")
		return
	}
	for i := range body.Items {
		body.Items[i].Payee = sanitizeInput(body.Items[i].Payee)
		body.Items[i].Notes = sanitizeInput(body.Items[i].Notes)
		if err := body.Items[i].Validate(); err != nil {
			writeAPIError(w, http.StatusUnprocessableEntity, core.ErrorCode(err), fmt.Sprintf("item %d: %v", i, err))
			return
		}
	}

	userID := currentUser(r)
	created, err := s.store.BulkCreateTransactions(r.Context(), userID, body.Items)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Bulk create failed",
			log.FieldUserID, userID,
			"items", len(body.Items),
			log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}
	s.invalidateBalances(userID)
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleAPITransfer(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeAPIError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	req, err := ParseTransferRequest(parser)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	userID := currentUser(r)
	res, err := s.transfers.Submit(r.Context(), userID, nil, req)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.transfersFailed, 1)
		writeDomainError(w, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transfersCompleted, 1)
	s.invalidateBalances(userID)
	writeData(w, http.StatusCreated, res)
}
