package core

// Summary aggregates an account's transactions over a date range.
type Summary struct {
	IncomeAmount    int64 `json:"incomeAmount"`
	ExpensesAmount  int64 `json:"expensesAmount"`
	RemainingAmount int64 `json:"remainingAmount"`
}

// SummaryQuery scopes a summary to one user, optionally one account, and a
// closed date range.
type SummaryQuery struct {
	UserID    string
	AccountID string
	From      Date
	To        Date
}

// FullHistory returns a query covering every transaction of the account up to today.
func FullHistory(userID, accountID string) SummaryQuery {
	return SummaryQuery{
		UserID:    userID,
		AccountID: accountID,
		From:      Epoch(),
		To:        Today(),
	}
}

// Add folds a single transaction amount into the summary.
func (s *Summary) Add(amount int64) {
	if amount >= 0 {
		s.IncomeAmount += amount
	} else {
		s.ExpensesAmount += amount
	}
	s.RemainingAmount += amount
}
