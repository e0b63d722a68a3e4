package http

import "encoding/json"

// looseString accepts either a JSON string or a bare JSON number, so
// clients may send amounts as "25.50" or 25.50 interchangeably. The
// raw text is validated downstream.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(b)
	return nil
}

func (s *looseString) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

type categoryRequest struct {
	Name *string `json:"name"`
	Type *string `json:"category_type"`
}

type transactionRequest struct {
	CategoryID *int64       `json:"category_id"`
	Amount     *looseString `json:"amount"`
	Date       *string      `json:"date"`
	Note       *string      `json:"note"`
}

type budgetRequest struct {
	CategoryID      *int64       `json:"category_id"`
	Amount          *looseString `json:"amount"`
	StartDate       *string      `json:"start_date"`
	EndDate         *string      `json:"end_date"`
	Frequency       *string      `json:"frequency"`
	Note            *string      `json:"note"`
	CurrentSpending *looseString `json:"current_spending"`
}

type goalRequest struct {
	Name     *string      `json:"name"`
	Target   *looseString `json:"target"`
	Deadline *string      `json:"deadline"`
	Note     *string      `json:"note"`
	Status   *string      `json:"status"`
}
