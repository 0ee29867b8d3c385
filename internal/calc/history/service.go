package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"HeatExchange/internal/calc/exchanger"
	"HeatExchange/internal/repo"
)

const DefaultLimit = 30

// Record is a saved calculation with its typed input and result.
type Record struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Input       exchanger.Input  `json:"-"`
	Result      exchanger.Result `json:"result"`
}

type Summary struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	Repo  repo.CalculationRepository
	Now   func() time.Time
	Limit int
}

func NewService(r repo.CalculationRepository, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{Repo: r, Now: time.Now, Limit: limit}
}

// DefaultName is used when the user leaves the name blank.
func DefaultName(now time.Time) string {
	return "Расчёт " + now.Format("02.01.2006 15:04")
}

func (s *Service) Calculate(ctx context.Context, userID int, in exchanger.Input) (Record, error) {
	res, err := exchanger.Calculate(in.Parameters)
	if err != nil {
		return Record{}, err
	}
	if !res.Finite() {
		return Record{}, exchanger.ErrNonFinite
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		in.Name = DefaultName(s.Now())
	}
	inputJSON, err := json.Marshal(in)
	if err != nil {
		return Record{}, fmt.Errorf("encode input: %w", err)
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return Record{}, fmt.Errorf("encode result: %w", err)
	}

	saved, err := s.Repo.CreateCalculation(ctx, repo.Calculation{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		InputJSON:   inputJSON,
		ResultJSON:  resultJSON,
	})
	if err != nil {
		return Record{}, fmt.Errorf("save calculation: %w", err)
	}
	return Record{
		ID:          saved.ID,
		Name:        saved.Name,
		Description: saved.Description,
		CreatedAt:   saved.CreatedAt,
		Input:       in,
		Result:      res,
	}, nil
}

func (s *Service) Get(ctx context.Context, userID, id int) (Record, error) {
	c, err := s.Repo.GetCalculation(ctx, userID, id)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		Input:       exchanger.DefaultInput(),
	}
	if err := json.Unmarshal(c.InputJSON, &rec.Input); err != nil {
		return Record{}, fmt.Errorf("decode input of calculation %d: %w", id, err)
	}
	if err := json.Unmarshal(c.ResultJSON, &rec.Result); err != nil {
		return Record{}, fmt.Errorf("decode result of calculation %d: %w", id, err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, userID int) ([]Summary, error) {
	list, err := s.Repo.ListCalculations(ctx, userID, s.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(list))
	for _, c := range list {
		out = append(out, Summary{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int) error {
	return s.Repo.DeleteCalculation(ctx, userID, id)
}
