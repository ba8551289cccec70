package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/metrics"
)

// RetryOptions configures RetryWithBackoff. Zero values fall back to the
// defaults used for database work: 3 retries, 150ms base delay, 1200ms cap.
type RetryOptions struct {
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

const (
	defaultRetries   = 3
	defaultBaseDelay = 150 * time.Millisecond
	defaultMaxDelay  = 1200 * time.Millisecond
)

// Postgres error classes/codes that indicate the server is unavailable rather
// than the statement being wrong: connection exceptions, shutdown, and
// connection-slot exhaustion.
var transientPgErrorCodes = map[string]bool{
	"08000": true, // connection_exception
	"08001": true, // sqlclient_unable_to_establish_sqlconnection
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
	"53300": true, // too_many_connections
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
}

var transientMessagePatterns = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"terminating connection",
	"timeout",
	"timed out",
	"database is locked",
}

// RetryWithBackoff executes fn, retrying transient infrastructure failures
// with deterministic exponential backoff: min(MaxDelay, BaseDelay * 2^attempt).
// Domain errors and any other non-transient failure propagate immediately.
// Exhausting the retries returns the last transient error.
func RetryWithBackoff[T any](fn func() (T, error), options RetryOptions) (T, error) {
	retries := options.Retries
	if retries == 0 {
		retries = defaultRetries
	}
	baseDelay := options.BaseDelay
	if baseDelay == 0 {
		baseDelay = defaultBaseDelay
	}
	maxDelay := options.MaxDelay
	if maxDelay == 0 {
		maxDelay = defaultMaxDelay
	}

	attempt := 0
	for {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !IsTransientDBError(err) || attempt >= retries {
			return result, err
		}

		delay := baseDelay << attempt
		if delay > maxDelay {
			delay = maxDelay
		}

		metrics.DBRetriesTotal.Inc()
		log.WithFields(log.Fields{
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   err.Error(),
		}).Warn("Transient database failure, retrying")

		time.Sleep(delay)
		attempt++
	}
}

// IsTransientDBError reports whether err looks like transient storage
// unavailability. Domain errors and record/uniqueness errors are never
// transient, regardless of their wrapped causes.
func IsTransientDBError(err error) bool {
	if err == nil {
		return false
	}

	var domainErr *OrderServiceError
	if errors.As(err, &domainErr) {
		return false
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientPgErrorCodes[pgErr.Code]
	}

	message := strings.ToLower(err.Error())
	for _, pattern := range transientMessagePatterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}

	return false
}
