package exchanger

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Handler serves calculations that are not saved to history.
type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	input := DefaultParameters()
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeResult(w, res)
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var raw struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	// every item starts from the defaults, not from the zero value
	input := BatchInput{Items: make([]Parameters, 0, len(raw.Items))}
	for _, item := range raw.Items {
		p := DefaultParameters()
		if err := json.Unmarshal(item, &p); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		input.Items = append(input.Items, p)
	}
	res, err := CalculateBatch(input)
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeResult(w, res)
}

// StatusFor maps solver errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrDegenerateFlow), errors.Is(err, ErrNonFinite):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeResult(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		// NaN and ±Inf have no JSON representation
		log.WithError(err).Warn("heat exchanger result is not serializable")
		http.Error(w, ErrNonFinite.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}
