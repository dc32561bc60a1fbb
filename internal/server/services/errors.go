package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
)

// repoError passes through the repository sentinels callers can act on and
// logs anything else, returning common.ErrorInternal in its place.
func repoError(ctx context.Context, logger logging.Logger, op string, err error, args ...any) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return common.ErrorAlreadyExists
	case errors.Is(err, common.ErrorInUse):
		return common.ErrorInUse
	default:
		logger.Error(ctx, op, append(args, "error", err)...)
		return common.ErrorInternal
	}
}
