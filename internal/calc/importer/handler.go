package importer

import (
	"encoding/json"
	"net/http"

	"HeatExchange/internal/auth"
	"HeatExchange/internal/calc/exchanger"
	"HeatExchange/internal/calc/history"

	log "github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 << 20 // 10MB

type Handler struct {
	Service  *history.Service
	Defaults exchanger.Input
}

type ImportResult struct {
	Count  int        `json:"count"`
	IDs    []int      `json:"ids"`
	Errors []RowError `json:"errors"`
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, bad, err := ReadWorkbook(file, h.Defaults)
	if err != nil {
		http.Error(w, "Invalid file: "+err.Error(), http.StatusBadRequest)
		return
	}

	out := ImportResult{IDs: []int{}, Errors: bad}
	if out.Errors == nil {
		out.Errors = []RowError{}
	}
	for _, row := range rows {
		rec, err := h.Service.Calculate(r.Context(), userID, row.Input)
		if err != nil {
			out.Errors = append(out.Errors, RowError{Row: row.Number, Error: err.Error()})
			continue
		}
		out.IDs = append(out.IDs, rec.ID)
	}
	out.Count = len(out.IDs)
	log.WithFields(log.Fields{"user_id": userID, "saved": out.Count, "failed": len(out.Errors)}).Info("calculations imported")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
