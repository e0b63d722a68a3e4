package menu

import (
	"context"
	"errors"
	"fmt"

	"tally/internal/core"
)

// setGoal walks the goal entry flow: name, target, deadline, note and
// status, then a summary the user can confirm, cancel, or edit.
func (m *Menu) setGoal(ctx context.Context) error {
	name, err := m.promptGoalName()
	if err != nil {
		return err
	}
	target, err := m.promptAmount("goal")
	if err != nil {
		return err
	}
	deadline, err := m.promptDate("Please enter the goal deadline (YYYY-MM-DD): ", false)
	if err != nil {
		return err
	}
	note, err := m.promptNote()
	if err != nil {
		return err
	}
	status, err := m.promptStatus()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintln(m.out, "\nPlease confirm the goal details:")
		fmt.Fprintf(m.out, "1. Name: %s\n", name)
		fmt.Fprintf(m.out, "2. Target: $%s\n", target.StringFixed(2))
		fmt.Fprintf(m.out, "3. Deadline: %s\n", deadline)
		fmt.Fprintf(m.out, "4. Note: %s\n", note)
		fmt.Fprintf(m.out, "5. Status: %s\n", status)

		choice, err := m.readLine("Enter Y to confirm, N to cancel, or 1-5 to edit: ")
		if err != nil {
			return err
		}
		switch choice {
		case "y", "Y":
			targetStr := target.StringFixed(2)
			deadlineStr := deadline.String()
			goal, err := m.goals.Create(ctx, m.owner.ID, core.GoalInput{
				Name:     &name,
				Target:   &targetStr,
				Deadline: &deadlineStr,
				Note:     &note,
				Status:   &status,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(m.out, "Goal '%s' added successfully!\n", goal.Name)
			return nil
		case "n", "N":
			fmt.Fprintln(m.out, "Goal cancelled.")
			return nil
		case "1":
			if name, err = m.promptGoalName(); err != nil {
				return err
			}
		case "2":
			if target, err = m.promptAmount("goal"); err != nil {
				return err
			}
		case "3":
			if deadline, err = m.promptDate("Please enter the goal deadline (YYYY-MM-DD): ", false); err != nil {
				return err
			}
		case "4":
			if note, err = m.readLine("Please write your optional note: "); err != nil {
				return err
			}
		case "5":
			if status, err = m.promptStatus(); err != nil {
				return err
			}
		default:
			fmt.Fprintln(m.out, "Invalid option. Please try again.")
		}
	}
	return errTooManyAttempts
}

func (m *Menu) promptGoalName() (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name, err := m.readLine("What is the name of your goal? ")
		if err != nil {
			return "", err
		}
		if name != "" && len(name) <= core.MaxGoalNameLen {
			return name, nil
		}
		fmt.Fprintf(m.out, "Goal names must be 1-%d characters.\n", core.MaxGoalNameLen)
	}
	return "", errTooManyAttempts
}

// goalProgress picks a goal, asks how much has been saved so far and
// prints the derived progress. The figure is never stored and the
// goal's own status is left untouched.
func (m *Menu) goalProgress(ctx context.Context) error {
	goals, err := m.goals.List(ctx, m.owner.ID)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Fprintln(m.out, "No goals set yet.")
		return nil
	}

	fmt.Fprintln(m.out, "\nYour goals:")
	valid := make(map[int64]bool, len(goals))
	for _, g := range goals {
		valid[g.ID] = true
		fmt.Fprintf(m.out, "%d: %s - $%s by %s [%s]\n", g.ID, g.Name, g.Target.StringFixed(2), g.Deadline, g.Status)
	}
	id, err := m.promptID("Enter the ID of the goal to check: ", valid)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine("How much have you saved towards this goal so far (in dollars)? ")
		if err != nil {
			return err
		}
		goal, progress, err := m.goals.Progress(ctx, m.owner.ID, id, raw)
		if err != nil {
			var fieldErrs core.FieldErrors
			if errors.As(err, &fieldErrs) {
				fmt.Fprintln(m.out, "Invalid amount. Please enter a valid number.")
				continue
			}
			return err
		}

		fmt.Fprintf(m.out, "\nProgress for '%s':\n", goal.Name)
		fmt.Fprintf(m.out, "Target: $%s\n", goal.Target.StringFixed(2))
		fmt.Fprintf(m.out, "Saved: $%s\n", progress.Saved.StringFixed(2))
		fmt.Fprintf(m.out, "Remaining: $%s\n", progress.Remaining.StringFixed(2))
		fmt.Fprintf(m.out, "Time until deadline: %s\n", progress.DaysLabel())
		fmt.Fprintf(m.out, "Progress: %s\n", progress.PercentageLabel())
		fmt.Fprintf(m.out, "Status: %s\n", progress.Status)
		return nil
	}
	return errTooManyAttempts
}
