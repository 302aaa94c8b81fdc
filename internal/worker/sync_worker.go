package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"smartbudget/internal/amqp"
	"smartbudget/internal/core"
	"smartbudget/internal/ledger"
	"smartbudget/internal/log"
	"smartbudget/internal/sheets"
	"smartbudget/internal/storage"
)

// Source is the ledger view the worker mirrors from.
type Source interface {
	Reload(ctx context.Context) error
	Get(kind core.Kind, id string) (core.Transaction, error)
	Query(kind core.Kind) []core.Transaction
}

// SyncRecorder keeps the mirror state of each transaction.
type SyncRecorder interface {
	MarkSynced(ctx context.Context, id, kind string) error
	MarkDeleted(ctx context.Context, id, kind string) error
	MarkSyncError(ctx context.Context, id, kind string, cause error) error
}

// SyncStateReader is implemented by recorders that can report past
// outcomes, such as storage.SQLiteStore.
type SyncStateReader interface {
	SyncState(ctx context.Context, id, kind string) (storage.SyncRecord, bool, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type nopRecorder struct{}

func (nopRecorder) MarkSynced(context.Context, string, string) error { return nil }
func (nopRecorder) MarkDeleted(context.Context, string, string) error { return nil }
func (nopRecorder) MarkSyncError(context.Context, string, string, error) error { return nil }

// SyncWorker mirrors ledger changes announced over AMQP into a sheet.
type SyncWorker struct {
	source   Source
	mirror   sheets.TransactionMirror
	recorder SyncRecorder
	logger   *log.Logger
}

// NewSyncWorker builds a worker. A nil recorder skips sync bookkeeping.
func NewSyncWorker(source Source, mirror sheets.TransactionMirror, recorder SyncRecorder, logger *log.Logger) *SyncWorker {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &SyncWorker{
		source:   source,
		mirror:   mirror,
		recorder: recorder,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage processes one ledger event. The ledger is reloaded first
// so the row reflects the latest persisted state. Returning an error
// requeues the message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		log.FieldEvent, string(msg.Type),
		log.FieldKind, string(msg.Kind),
		log.FieldTransactionID, msg.ID)

	if err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}

	switch msg.Type {
	case ledger.EventCreated, ledger.EventUpdated:
		if msg.ID == "" || msg.Kind == "" {
			w.logger.WarnContext(ctx, "Dropping transaction event without id or kind", log.FieldEvent, string(msg.Type))
			return nil
		}
		t, err := w.source.Get(msg.Kind, msg.ID)
		if errors.Is(err, ledger.ErrNotFound) {
			// Deleted after the event was published.
			return w.remove(ctx, msg.Kind, msg.ID)
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		return w.upsert(ctx, t)
	case ledger.EventDeleted:
		if msg.ID == "" {
			return nil
		}
		return w.remove(ctx, msg.Kind, msg.ID)
	case ledger.EventImported, ledger.EventReset:
		return w.fullSync(ctx)
	case ledger.EventBudgets:
		// The sheet mirrors transactions only.
		w.logger.DebugContext(ctx, "Skipping budget event", log.FieldEvent, string(msg.Type))
		return nil
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", log.FieldEvent, string(msg.Type))
		return nil
	}
}

// StartupSync rewrites the sheet from the current ledger. It recovers
// from events missed while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	if err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	if err := w.fullSync(ctx); err != nil {
		return err
	}
	if counts, err := w.Stats(ctx); err != nil {
		w.logger.WarnContext(ctx, "Failed to read sync status", log.FieldError, err)
	} else if counts != nil {
		w.logger.InfoContext(ctx, "Sync status",
			storage.SyncStatusSynced, counts[storage.SyncStatusSynced],
			storage.SyncStatusDeleted, counts[storage.SyncStatusDeleted],
			storage.SyncStatusError, counts[storage.SyncStatusError])
	}
	return nil
}

// Stats returns how many transactions are in each sync state. It returns
// nil when the recorder keeps no history.
func (w *SyncWorker) Stats(ctx context.Context) (map[string]int, error) {
	r, ok := w.recorder.(SyncStateReader)
	if !ok {
		return nil, nil
	}
	return r.CountByStatus(ctx)
}

// alreadyRemoved reports whether the row of id was deleted before, so a
// redelivered delete does not spend a Sheets call.
func (w *SyncWorker) alreadyRemoved(ctx context.Context, kind core.Kind, id string) bool {
	r, ok := w.recorder.(SyncStateReader)
	if !ok {
		return false
	}
	rec, found, err := r.SyncState(ctx, id, kind.String())
	return err == nil && found && rec.Status == storage.SyncStatusDeleted
}

func (w *SyncWorker) upsert(ctx context.Context, t core.Transaction) error {
	ref, err := w.mirror.Upsert(ctx, t)
	if err != nil {
		if markErr := w.recorder.MarkSyncError(ctx, t.ID, t.Kind.String(), err); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", log.FieldTransactionID, t.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("upsert row: %w", err)
	}
	// The row is written even if bookkeeping fails.
	if err := w.recorder.MarkSynced(ctx, t.ID, t.Kind.String()); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", log.FieldTransactionID, t.ID, log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Synced transaction",
		log.FieldTransactionID, t.ID,
		log.FieldKind, t.Kind.String(),
		log.FieldSheetsRef, ref,
		log.FieldAmount, t.Amount)
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, kind core.Kind, id string) error {
	if w.alreadyRemoved(ctx, kind, id) {
		w.logger.DebugContext(ctx, "Row already removed", log.FieldTransactionID, id)
		return nil
	}
	if err := w.mirror.Delete(ctx, id); err != nil {
		if markErr := w.recorder.MarkSyncError(ctx, id, kind.String(), err); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", log.FieldTransactionID, id, log.FieldError, markErr)
		}
		return fmt.Errorf("delete row: %w", err)
	}
	if err := w.recorder.MarkDeleted(ctx, id, kind.String()); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as deleted", log.FieldTransactionID, id, log.FieldError, err)
	}
	w.logger.InfoContext(ctx, "Removed transaction row", log.FieldTransactionID, id)
	return nil
}

func (w *SyncWorker) fullSync(ctx context.Context) error {
	all := append(w.source.Query(core.Expense), w.source.Query(core.Income)...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })

	if err := w.mirror.Replace(ctx, all); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	for _, t := range all {
		if err := w.recorder.MarkSynced(ctx, t.ID, t.Kind.String()); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mark as synced", log.FieldTransactionID, t.ID, log.FieldError, err)
		}
	}
	w.logger.InfoContext(ctx, "Full sync completed", "rows", len(all))
	return nil
}
