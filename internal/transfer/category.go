package transfer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// CategoryResolver finds or creates the reserved transfer category of a user.
//
// Concurrent resolutions for the same user in this process share one lookup.
// Two processes racing on a fresh user may still both create the category;
// later lookups pick the first match.
type CategoryResolver struct {
	store  ports.CategoryStore
	logger *log.Logger
	group  singleflight.Group
}

// NewCategoryResolver returns a resolver over store. A nil logger discards output.
func NewCategoryResolver(store ports.CategoryStore, logger *log.Logger) *CategoryResolver {
	if logger == nil {
		logger = log.Discard()
	}
	return &CategoryResolver{
		store:  store,
		logger: logger.WithComponent(log.ComponentTransfer),
	}
}

// Resolve returns the id of the user's transfer category, creating it when
// missing. Failures are reported as core.ErrCategoryResolution.
//
// The shared lookup runs detached from the first caller's cancellation so
// that callers waiting on the same user are not failed by it.
func (r *CategoryResolver) Resolve(ctx context.Context, userID string) (string, error) {
	v, err, _ := r.group.Do(userID, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), userID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *CategoryResolver) resolve(ctx context.Context, userID string) (string, error) {
	categories, err := r.store.ListCategories(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: list categories: %w", core.ErrCategoryResolution, err)
	}
	for _, c := range categories {
		if core.IsTransferCategory(c.Name) {
			return c.ID, nil
		}
	}

	created, err := r.store.CreateCategory(ctx, userID, core.TransferCategoryName)
	if err != nil {
		return "", fmt.Errorf("%w: create category: %w", core.ErrCategoryResolution, err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", fmt.Errorf("%w: created category has no id", core.ErrCategoryResolution)
	}

	r.logger.InfoContext(ctx, "Transfer category created",
		log.FieldUserID, userID,
		log.FieldCategoryID, created.ID,
		log.FieldOperation, log.OpCreate)
	return created.ID, nil
}
