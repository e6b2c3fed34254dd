package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/transfer"
)

type accountView struct {
	ID       string
	Name     string
	Balance  string
	Negative bool
}

type transferView struct {
	Open            bool
	Date            string
	SourceAccountID string
	TargetAccountID string
	Amount          string
	Notes           string
	SourceBalance   string
	Accounts        []core.Account
}

type balanceView struct {
	AccountID string
	Balance   string
	Negative  bool
}

type indexView struct {
	Accounts []accountView
	Transfer transferView
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate,
			"error_type", log.ErrorTypeConfiguration)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(),
			"template", name)
		InternalServerError("Error rendering page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) accountViews(ctx context.Context, userID string, accounts []core.Account) []accountView {
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		v := accountView{ID: a.ID, Name: a.Name, Balance: "n/a"}
		if bal, err := s.balance(ctx, userID, a.ID, false); err != nil {
			s.logger.WarnContext(ctx, "Balance unavailable",
				log.FieldAccountID, a.ID,
				log.FieldError, err.Error())
		} else {
			v.Balance = formatEuros(bal)
			v.Negative = bal < 0
		}
		views = append(views, v)
	}
	return views
}

func (s *Server) transferView(ctx context.Context, userID string, session *transfer.Session, accounts []core.Account) transferView {
	form := session.Form()
	date := form.Date
	if date.IsZero() {
		date = s.today()
	}
	v := transferView{
		Open:            session.IsOpen(),
		Date:            date.String(),
		SourceAccountID: form.SourceAccountID,
		TargetAccountID: form.TargetAccountID,
		Amount:          form.Amount,
		Notes:           form.Notes,
		Accounts:        accounts,
	}
	if form.SourceAccountID != "" {
		if bal, err := s.balance(ctx, userID, form.SourceAccountID, true); err == nil {
			v.SourceBalance = formatEuros(bal)
		}
	}
	return v
}

// ownedAccount returns the user's account with the given id.
func (s *Server) ownedAccount(ctx context.Context, userID, accountID string) ([]core.Account, core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, core.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == accountID {
			return accounts, a, nil
		}
	}
	return accounts, core.Account{}, fmt.Errorf("account %q: %w", accountID, core.ErrNotFound)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List accounts failed", log.FieldError, err.Error())
	}

	session := s.sessions.Get(userID)
	data := indexView{
		Accounts: s.accountViews(r.Context(), userID, accounts),
	}
	if session.IsOpen() {
		data.Transfer = s.transferView(r.Context(), userID, session, accounts)
	}
	s.render(w, r, "index.html", data)
}

// handleAccountsPartial re-renders the account list after a transfer.
func (s *Server) handleAccountsPartial(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List accounts failed", log.FieldError, err.Error())
		InternalServerError("Error loading accounts").Write(w)
		return
	}
	s.render(w, r, "accounts.html", s.accountViews(r.Context(), userID, accounts))
}

func (s *Server) handleTransferOpen(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	userID := currentUser(r)
	accountID := sanitizeInput(r.Form.Get("accountId"))
	accounts, _, err := s.ownedAccount(r.Context(), userID, accountID)
	if err != nil {
		ErrorResponse(statusForError(err), "Account not found").Write(w)
		return
	}

	session := s.sessions.Get(userID)
	session.Open(accountID, s.now())
	s.logger.DebugContext(r.Context(), "Transfer dialog opened",
		log.FieldUserID, userID,
		log.FieldSourceAccount, accountID)

	s.render(w, r, "transfer_form.html", s.transferView(r.Context(), userID, session, accounts))
}

func (s *Server) handleTransferClose(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	s.sessions.Get(currentUser(r)).Close()
	NewHTMXResponse().TriggerTransferClosed().BodyHTML("").Write(w)
}

// handleTransferBalance returns the live balance of the selected source.
func (s *Server) handleTransferBalance(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	userID := currentUser(r)
	accountID := sanitizeInput(r.URL.Query().Get("sourceAccountId"))
	if accountID == "" {
		accountID = sanitizeInput(r.URL.Query().Get("accountId"))
	}
	if _, _, err := s.ownedAccount(r.Context(), userID, accountID); err != nil {
		ErrorResponse(statusForError(err), "Account not found").Write(w)
		return
	}

	bal, err := s.balance(r.Context(), userID, accountID, true)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Balance query failed",
			log.FieldAccountID, accountID,
			log.FieldError, err.Error())
		InternalServerError("Error loading balance").Write(w)
		return
	}
	s.render(w, r, "balance.html", balanceView{
		AccountID: accountID,
		Balance:   formatEuros(bal),
		Negative:  bal < 0,
	})
}

func (s *Server) handleTransferSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	req, err := ParseTransferRequest(parser)
	if err != nil {
		s.transferError(w, err)
		return
	}

	userID := currentUser(r)
	session := s.sessions.Get(userID)
	session.SetForm(transfer.Form{
		Date:            req.Date,
		SourceAccountID: req.SourceAccountID,
		TargetAccountID: req.TargetAccountID,
		Amount:          req.Amount,
		Notes:           req.Notes,
	})

	res, err := s.transfers.Submit(r.Context(), userID, session, req)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.transfersFailed, 1)
		s.transferError(w, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.transfersCompleted, 1)
	s.invalidateBalances(userID)

	NewHTMXResponse().
		TriggerTransferCompleted(req.SourceAccountID, req.TargetAccountID).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Transfer of %s saved", formatEuros(res.Inflow.Amount))).
		BodyHTML("").
		Write(w)
}

// transferError shows err inside the open form and as a notification. The
// form keeps the values the user entered.
func (s *Server) transferError(w http.ResponseWriter, err error) {
	ErrorResponse(statusForError(err), userMessage(err)).
		Retarget("#transfer-errors", "innerHTML").
		Write(w)
}
