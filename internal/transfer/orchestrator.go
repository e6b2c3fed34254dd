// Package transfer implements the transfer workflow: moving money between two
// accounts of the same user as a pair of transactions that sum to zero.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// Stage is a step of a single transfer submission.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageResolving  Stage = "resolving"
	StageValidating Stage = "validating"
	StageBuilding   Stage = "building"
	StageSubmitting Stage = "submitting"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Request is a transfer as entered by the user. Amount is the raw decimal
// text; a zero Date means today.
type Request struct {
	Date            core.Date `json:"date"`
	SourceAccountID string    `json:"sourceAccountId"`
	TargetAccountID string    `json:"targetAccountId"`
	Amount          string    `json:"amount"`
	Notes           string    `json:"notes"`
}

// FormRequest converts the session form into a request.
func FormRequest(f Form) Request {
	return Request{
		Date:            f.Date,
		SourceAccountID: f.SourceAccountID,
		TargetAccountID: f.TargetAccountID,
		Amount:          f.Amount,
		Notes:           f.Notes,
	}
}

// Result describes how far a submission got. On success Outflow and Inflow
// hold the stored transactions.
type Result struct {
	Stage      Stage            `json:"-"`
	Outflow    core.Transaction `json:"outflow"`
	Inflow     core.Transaction `json:"inflow"`
	CategoryID string           `json:"categoryId"`
}

// Resolver returns the transfer category id of a user.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// Orchestrator runs a transfer submission end to end. It holds no per-user
// state; the session, when there is one, is passed to Submit.
type Orchestrator struct {
	categories Resolver
	accounts   ports.AccountReader
	balances   ports.SummaryReader
	writer     ports.TransactionBulkWriter
	validator  Validator
	logger     *log.Logger

	now   func() time.Time
	newID func() string
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) { o.newID = gen }
}

// WithValidator overrides the default magnitude validator.
func WithValidator(v Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// NewOrchestrator wires the collaborators of a transfer. A nil logger discards output.
func NewOrchestrator(
	categories Resolver,
	accounts ports.AccountReader,
	balances ports.SummaryReader,
	writer ports.TransactionBulkWriter,
	logger *log.Logger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = log.Discard()
	}
	o := &Orchestrator{
		categories: categories,
		accounts:   accounts,
		balances:   balances,
		writer:     writer,
		validator:  NewValidator(PolicyMagnitude),
		logger:     logger.WithComponent(log.ComponentTransfer),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit runs one transfer. Nothing is retried. When session is non-nil and
// the pair was written, its form is reset and it is closed; on failure the
// session is left untouched.
func (o *Orchestrator) Submit(ctx context.Context, userID string, session *Session, req Request) (Result, error) {
	res := Result{Stage: StageIdle}
	logger := o.logger.With(log.FieldUserID, userID,
		log.FieldSourceAccount, req.SourceAccountID,
		log.FieldTargetAccount, req.TargetAccountID)

	fail := func(stage Stage, err error) (Result, error) {
		res.Stage = StageFailed
		log.NewStructuredLogger(logger).LogTransferFailed(ctx, string(stage), core.ErrorCode(err), err)
		return res, err
	}

	res.Stage = StageResolving
	logger.DebugContext(ctx, "Transfer stage", log.FieldStage, string(res.Stage))
	categoryID, err := o.categories.Resolve(ctx, userID)
	if err != nil {
		return fail(StageResolving, err)
	}
	res.CategoryID = categoryID

	res.Stage = StageValidating
	logger.DebugContext(ctx, "Transfer stage", log.FieldStage, string(res.Stage))
	amount, err := core.ParseDecimalToMiliunits(req.Amount)
	if err != nil {
		return fail(StageValidating, err)
	}
	if err := o.validator.ValidateRequest(req.SourceAccountID, req.TargetAccountID, amount); err != nil {
		return fail(StageValidating, err)
	}

	today := core.DateOf(o.now())
	balance, err := o.balances.Summary(ctx, core.SummaryQuery{
		UserID:    userID,
		AccountID: req.SourceAccountID,
		From:      core.Epoch(),
		To:        today,
	})
	if err != nil {
		return fail(StageValidating, fmt.Errorf("query balance: %w", err))
	}
	if err := o.validator.Validate(req.SourceAccountID, req.TargetAccountID, amount, balance.RemainingAmount); err != nil {
		return fail(StageValidating, err)
	}

	res.Stage = StageBuilding
	logger.DebugContext(ctx, "Transfer stage", log.FieldStage, string(res.Stage))
	names, err := o.accountNames(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "Account names unavailable, using ids as payees", log.FieldError, err.Error())
	}
	date := req.Date
	if date.IsZero() {
		date = today
	}
	outflow, inflow := o.buildPair(date, categoryID, req, amount, names)

	res.Stage = StageSubmitting
	logger.DebugContext(ctx, "Transfer stage", log.FieldStage, string(res.Stage))
	created, err := o.writer.BulkCreateTransactions(ctx, userID, []core.Transaction{outflow, inflow})
	if err != nil {
		return fail(StageSubmitting, fmt.Errorf("%w: %w", core.ErrSubmissionFailed, err))
	}
	if len(created) == 2 {
		outflow, inflow = created[0], created[1]
	}

	res.Stage = StageCompleted
	res.Outflow = outflow
	res.Inflow = inflow
	if session != nil {
		session.complete(o.now())
	}
	log.NewStructuredLogger(o.logger).LogTransferCompleted(ctx, userID,
		req.SourceAccountID, req.TargetAccountID, amount, categoryID)
	return res, nil
}

func (o *Orchestrator) accountNames(ctx context.Context, userID string) (map[string]string, error) {
	accounts, err := o.accounts.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names, nil
}

func (o *Orchestrator) buildPair(date core.Date, categoryID string, req Request, amount int64, names map[string]string) (core.Transaction, core.Transaction) {
	outflow := core.Transaction{
		ID:         o.newID(),
		Date:       date,
		AccountID:  req.SourceAccountID,
		CategoryID: categoryID,
		Payee:      "Transfer to " + displayName(names, req.TargetAccountID),
		Amount:     -amount,
		Notes:      req.Notes,
	}
	inflow := core.Transaction{
		ID:         o.newID(),
		Date:       date,
		AccountID:  req.TargetAccountID,
		CategoryID: categoryID,
		Payee:      "Transfer from " + displayName(names, req.SourceAccountID),
		Amount:     amount,
		Notes:      req.Notes,
	}
	return outflow, inflow
}

// displayName falls back to the raw id for accounts missing from the list.
func displayName(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
