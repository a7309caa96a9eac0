package presentationservice

import (
	"errors"
	"fmt"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
)

var (
	// ErrPermissionDenied means the platform refused the edit. It is logged and not retried.
	ErrPermissionDenied = fmt.Errorf("presentation edit refused: %w", presentationdomain.ErrPermissionDenied)
	// ErrRateLimited means the caller must back off before the next platform call.
	ErrRateLimited = fmt.Errorf("presentation edit throttled: %w", presentationdomain.ErrRateLimited)
)

// IsPermissionDenied reports whether err came from a refused platform call.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, presentationdomain.ErrPermissionDenied)
}
