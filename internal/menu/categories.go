package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tally/internal/core"
)

func (m *Menu) showCategories(cats []core.Category) {
	fmt.Fprintln(m.out, "\nCategories:")
	for _, c := range cats {
		fmt.Fprintf(m.out, "%d. %s (%s)\n", c.ID, c.Name, c.Type)
	}
}

// chooseCategory lists categories of the given type and reads a
// selection. Entering "a" adds a new category first, then re-shows the
// refreshed list.
func (m *Menu) chooseCategory(ctx context.Context, categoryType core.CategoryType) (core.Category, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cats, err := m.categories.List(ctx, &categoryType)
		if err != nil {
			return core.Category{}, err
		}
		m.showCategories(cats)

		raw, err := m.readLine("Select a category ID, or enter 'a' to add a new category: ")
		if err != nil {
			return core.Category{}, err
		}
		if raw == "a" || raw == "A" {
			if err := m.addCategory(ctx, categoryType); err != nil {
				return core.Category{}, err
			}
			continue
		}

		for _, c := range cats {
			if fmt.Sprint(c.ID) == raw {
				return c, nil
			}
		}
		fmt.Fprintln(m.out, "Invalid option. Please try again.")
	}
	return core.Category{}, errTooManyAttempts
}

func (m *Menu) addCategory(ctx context.Context, categoryType core.CategoryType) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name, err := m.readLine("What is the name of your new category? ")
		if err != nil {
			return err
		}
		typeStr := string(categoryType)
		cat, err := m.categories.Create(ctx, core.CategoryInput{Name: &name, Type: &typeStr})
		if err == nil {
			fmt.Fprintf(m.out, "Category '%s' added successfully!\n", cat.Name)
			return nil
		}
		if errors.Is(err, core.ErrConflict) {
			fmt.Fprintln(m.out, "That category already exists. Please try again.")
			continue
		}
		var fieldErrs core.FieldErrors
		if errors.As(err, &fieldErrs) {
			fmt.Fprintln(m.out, "Invalid name, please try again.")
			continue
		}
		return err
	}
	return errTooManyAttempts
}

func (m *Menu) manageCategories(ctx context.Context) error {
	for {
		cats, err := m.categories.List(ctx, nil)
		if err != nil {
			return err
		}
		m.showCategories(cats)

		raw, err := m.readLine("Enter 'a' to add, 'd' to delete, or 'n' to return: ")
		if err != nil {
			return err
		}
		switch raw {
		case "a", "A":
			catType, err := m.promptCategoryType()
			if err != nil {
				return err
			}
			if err := m.addCategory(ctx, catType); err != nil {
				return err
			}
		case "d", "D":
			if len(cats) == 0 {
				fmt.Fprintln(m.out, "No categories to delete.")
				continue
			}
			valid := make(map[int64]bool, len(cats))
			for _, c := range cats {
				valid[c.ID] = true
			}
			id, err := m.promptID("Enter the ID of the category to delete: ", valid)
			if err != nil {
				return err
			}
			if err := m.deleteCategory(ctx, id); err != nil {
				return err
			}
		case "n", "N":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option. Please try again.")
		}
	}
}

func (m *Menu) deleteCategory(ctx context.Context, id int64) error {
	err := m.categories.Delete(ctx, id)
	var inUse *core.CategoryInUseError
	switch {
	case err == nil:
		fmt.Fprintln(m.out, "Category deleted successfully!")
	case errors.As(err, &inUse):
		fmt.Fprintf(m.out, "Cannot delete: %s.\n", inUse.Error())
	case errors.Is(err, core.ErrNotFound):
		fmt.Fprintln(m.out, "Category not found.")
	default:
		return err
	}
	return nil
}

func (m *Menu) promptCategoryType() (core.CategoryType, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine("Is this an EXPENSE or INCOME category? ")
		if err != nil {
			return "", err
		}
		if t, ok := core.ParseCategoryType(strings.ToUpper(raw)); ok {
			return t, nil
		}
		fmt.Fprintln(m.out, "Invalid option. Please enter EXPENSE or INCOME.")
	}
	return "", errTooManyAttempts
}
