package history

import (
	"context"
	"log/slog"
	"time"

	"plutoshell/internal/backend"
	"plutoshell/internal/logging"
)

const writeTimeout = 5 * time.Second

// Observer records backend lifecycle events into a Store. Write failures are
// logged and otherwise ignored so history never affects supervision.
type Observer struct {
	store  *Store
	logger *slog.Logger
}

var _ backend.Observer = (*Observer)(nil)

// NewObserver returns a backend.Observer backed by store.
func NewObserver(store *Store, logger *slog.Logger) *Observer {
	return &Observer{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

func (o *Observer) LaunchStarted(rec backend.LaunchRecord) {
	o.write("launch", rec.LaunchID, func(ctx context.Context) error {
		return o.store.RecordLaunch(ctx, rec)
	})
}

func (o *Observer) LaunchStopped(rec backend.StopRecord) {
	o.write("stop", rec.LaunchID, func(ctx context.Context) error {
		return o.store.RecordStop(ctx, rec)
	})
}

func (o *Observer) LaunchFailed(rec backend.FailureRecord) {
	o.write("failure", rec.LaunchID, func(ctx context.Context) error {
		return o.store.RecordFailure(ctx, rec)
	})
}

func (o *Observer) write(kind, launchID string, fn func(context.Context) error) {
	if o == nil || o.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logging.WarnWithContext(o.logger, "failed to record launch history", "history_write_failed",
			logging.String("record", kind),
			logging.String(logging.FieldLaunchID, launchID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete history.db under the data root if it is corrupt"),
			logging.String(logging.FieldImpact, "launch history will be incomplete"),
		)
	}
}
