package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Goal statuses. The stored status is free text supplied by the owner;
// these are the values the derivation and the CLI picker use.
const (
	StatusOnTrack        = "On Track"
	StatusNotStarted     = "Not Started"
	StatusBehindSchedule = "Behind Schedule"
	StatusCompleted      = "Completed"
)

// Goal is a savings target with a deadline, scoped to its owner.
// Progress is computed per request from a supplied saved-so-far figure,
// not persisted as a running balance.
type Goal struct {
	ID       int64
	OwnerID  int64
	Name     string
	Target   decimal.Decimal
	Deadline Date
	Note     string
	Status   string
}

// GoalInput carries raw goal fields prior to validation.
type GoalInput struct {
	Name     *string
	Target   *string
	Deadline *string
	Note     *string
	Status   *string
}

// Validate checks every field and accumulates all violations.
func (in GoalInput) Validate() (Goal, FieldErrors) {
	errs := FieldErrors{}
	var g Goal

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		errs.Add("name", MsgRequired)
	} else if len(*in.Name) > MaxGoalNameLen {
		errs.Add("name", MsgMaxLength(MaxGoalNameLen))
	} else {
		g.Name = strings.TrimSpace(*in.Name)
	}

	if in.Target == nil {
		errs.Add("target", MsgRequired)
	} else if target, err := ParseAmount(*in.Target); err != nil {
		if _, numErr := decimal.NewFromString(strings.TrimSpace(*in.Target)); numErr != nil {
			errs.Add("target", MsgInvalidNumber)
		} else {
			errs.Add("target", MsgNotPositive)
		}
	} else {
		g.Target = target
	}

	if in.Deadline == nil || *in.Deadline == "" {
		errs.Add("deadline", MsgRequired)
	} else if deadline, err := ParseDate(*in.Deadline); err != nil {
		errs.Add("deadline", MsgInvalidDate)
	} else {
		g.Deadline = deadline
	}

	if in.Status == nil || strings.TrimSpace(*in.Status) == "" {
		errs.Add("status", MsgRequired)
	} else {
		g.Status = strings.TrimSpace(*in.Status)
	}

	if in.Note != nil {
		if len(*in.Note) > MaxNoteLen {
			errs.Add("note", MsgMaxLength(MaxNoteLen))
		} else {
			g.Note = *in.Note
		}
	}

	if len(errs) > 0 {
		return Goal{}, errs
	}
	return g, errs
}

// GoalProgress is the transient progress view computed from a
// user-supplied saved-so-far figure. Nothing here is persisted; the
// stored goal status is never overwritten by this computation.
type GoalProgress struct {
	Saved         decimal.Decimal
	Remaining     decimal.Decimal
	DaysRemaining int
	// Percentage is nil when the target is zero, rendered as "N/A".
	Percentage *decimal.Decimal
	// Status is the advisory classification derived from saved vs.
	// target vs. deadline.
	Status string
}

// Progress computes the goal's progress as of today. Over-saving yields
// a negative remaining amount, which is not an error.
func (g Goal) Progress(saved decimal.Decimal, today Date) GoalProgress {
	p := GoalProgress{
		Saved:         saved.Round(2),
		Remaining:     g.Target.Sub(saved).Round(2),
		DaysRemaining: today.DaysUntil(g.Deadline),
	}

	if g.Target.IsPositive() {
		pct := saved.Div(g.Target).Mul(decimal.NewFromInt(100)).Round(2)
		p.Percentage = &pct
	}

	switch {
	case saved.IsZero():
		p.Status = StatusNotStarted
	case saved.GreaterThanOrEqual(g.Target):
		p.Status = StatusCompleted
	case p.DaysRemaining < 0:
		p.Status = StatusBehindSchedule
	default:
		p.Status = StatusOnTrack
	}

	return p
}

// DaysLabel renders the days-to-deadline figure; past-deadline goals
// read "OVERDUE by N days" rather than a negative count.
func (p GoalProgress) DaysLabel() string {
	if p.DaysRemaining < 0 {
		return fmt.Sprintf("OVERDUE by %d days", -p.DaysRemaining)
	}
	return fmt.Sprintf("%d days", p.DaysRemaining)
}

// PercentageLabel renders the percentage, or "N/A" when the target is
// zero and no percentage is defined.
func (p GoalProgress) PercentageLabel() string {
	if p.Percentage == nil {
		return "N/A"
	}
	return p.Percentage.StringFixed(1) + "%"
}
