package menu

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// maxAttempts bounds every retry loop so a confused pipe or user
// cannot spin forever.
const maxAttempts = 3

var errTooManyAttempts = errors.New("too many invalid attempts")

func (m *Menu) readLine(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) promptYesNo(prompt string) (bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(raw) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(m.out, "Invalid option. Please enter 'y' or 'n'.")
	}
	return false, errTooManyAttempts
}

// promptAmount reads a positive money amount, stripping $, commas and
// whitespace before parsing.
func (m *Menu) promptAmount(label string) (decimal.Decimal, error) {
	prompt := fmt.Sprintf("Please type the amount for the %s here (in dollars): ", label)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := core.ParseAmount(raw)
		if err == nil {
			return amount, nil
		}
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
		if _, numErr := decimal.NewFromString(cleaned); numErr == nil {
			fmt.Fprintln(m.out, "Amount must be greater than 0.")
		} else {
			fmt.Fprintln(m.out, "Invalid amount. Please enter a valid number.")
		}
	}
	return decimal.Zero, errTooManyAttempts
}

// promptDate reads a YYYY-MM-DD date. With defaultToday set, an empty
// line means today.
func (m *Menu) promptDate(prompt string, defaultToday bool) (core.Date, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine(prompt)
		if err != nil {
			return core.Date{}, err
		}
		if raw == "" && defaultToday {
			return core.Today(), nil
		}
		date, err := core.ParseDate(raw)
		if err == nil {
			return date, nil
		}
		fmt.Fprintln(m.out, "Invalid date. Please try again (format: YYYY-MM-DD).")
	}
	return core.Date{}, errTooManyAttempts
}

// promptNote offers an optional note.
func (m *Menu) promptNote() (string, error) {
	want, err := m.promptYesNo("Would you like to write an optional note? y/n: ")
	if err != nil {
		return "", err
	}
	if !want {
		return "", nil
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		note, err := m.readLine("Please write your optional note: ")
		if err != nil {
			return "", err
		}
		if len(note) <= core.MaxNoteLen {
			return note, nil
		}
		fmt.Fprintf(m.out, "Notes must be %d characters max.\n", core.MaxNoteLen)
	}
	return "", errTooManyAttempts
}

// promptID reads a record ID out of the given set.
func (m *Menu) promptID(prompt string, valid map[int64]bool) (int64, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine(prompt)
		if err != nil {
			return 0, err
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid input. Please enter a number.")
			continue
		}
		if !valid[id] {
			fmt.Fprintln(m.out, "ID not found. Please try again.")
			continue
		}
		return id, nil
	}
	return 0, errTooManyAttempts
}

// promptStatus reads a goal status, defaulting to On Track on an empty
// line.
func (m *Menu) promptStatus() (string, error) {
	options := []string{core.StatusOnTrack, core.StatusNotStarted, core.StatusBehindSchedule, core.StatusCompleted}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintln(m.out, "\nGoal Status:")
		for i, opt := range options {
			suffix := ""
			if i == 0 {
				suffix = " (default)"
			}
			fmt.Fprintf(m.out, "%d. %s%s\n", i+1, opt, suffix)
		}
		raw, err := m.readLine("Select status (1-4) or press Enter for default: ")
		if err != nil {
			return "", err
		}
		if raw == "" {
			return core.StatusOnTrack, nil
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		fmt.Fprintln(m.out, "Invalid choice. Please select 1-4 or press Enter for default.")
	}
	return "", errTooManyAttempts
}
