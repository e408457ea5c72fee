package jobs

import (
	"context"
	"fmt"

	"rentaltracker-backend/internal/logger"
)

// ReminderResult summarises one reminder run.
type ReminderResult struct {
	Marked int64
	Sent   int
	Failed int
}

// MarkOverdueRentals moves rentals past their due date to overdue.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		n, err := jr.services.Rental.SweepOverdue(context.Background(), nil)
		if err != nil {
			logger.Error("Failed to mark overdue rentals", "error", err)
			return
		}
		logger.Info("Marked rentals as overdue", "count", n)
	})
}

// SendOverdueReminders emails every user holding an overdue rental.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		res, err := jr.RemindOverdue(context.Background())
		if err != nil {
			logger.Error("Failed to send overdue reminders", "error", err)
			return
		}
		logger.Info("Overdue reminders processed",
			"marked", res.Marked,
			"sent", res.Sent,
			"failed", res.Failed)
	})
}

// RemindOverdue sweeps first so rentals that fell due since the last run are
// included, then sends one reminder per overdue rental. A failed delivery is
// logged and counted without stopping the run.
func (jr *JobRunner) RemindOverdue(ctx context.Context) (ReminderResult, error) {
	var res ReminderResult

	marked, err := jr.services.Rental.SweepOverdue(ctx, nil)
	if err != nil {
		return res, err
	}
	res.Marked = marked

	notices, err := jr.services.Rental.OverdueNotices(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list overdue rentals: %w", err)
	}

	for _, notice := range notices {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := jr.services.Email.SendOverdueReminder(ctx, notice); err != nil {
			logger.Error("Failed to send overdue reminder",
				"rental_id", notice.RentalID,
				"to", notice.UserEmail,
				"error", err)
			res.Failed++
			continue
		}
		logger.Debug("Sent overdue reminder",
			"rental_id", notice.RentalID,
			"days_overdue", notice.DaysOverdue)
		res.Sent++
	}
	return res, nil
}
