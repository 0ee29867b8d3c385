package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"HeatExchange/internal/auth"
	"HeatExchange/internal/calc/exchanger"
	"HeatExchange/internal/calc/report"
	"HeatExchange/internal/repo"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const msgInvalidParameters = "Проверьте значения: высота, площадь, расходы и α_v должны быть > 0"

type Handler struct {
	Service  *Service
	Defaults exchanger.Input
	FontPath string
}

type calcResponse struct {
	Success bool              `json:"success"`
	ID      int               `json:"id,omitempty"`
	Result  *exchanger.Result `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type detailResponse struct {
	ID          int                  `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
	Material    exchanger.Material   `json:"material"`
	Gas         exchanger.Gas        `json:"gas"`
	Parameters  exchanger.Parameters `json:"parameters"`
	Result      exchanger.Result     `json:"result"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	input := h.Defaults
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, calcResponse{Error: "Данные не получены"})
		return
	}

	rec, err := h.Service.Calculate(r.Context(), userID, input)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, calcResponse{Success: true, ID: rec.ID, Result: &rec.Result})
	case errors.Is(err, exchanger.ErrInvalidParameter):
		writeJSON(w, http.StatusBadRequest, calcResponse{Error: msgInvalidParameters})
	case errors.Is(err, exchanger.ErrDegenerateFlow), errors.Is(err, exchanger.ErrNonFinite):
		writeJSON(w, http.StatusUnprocessableEntity, calcResponse{Error: "Ошибка: " + err.Error()})
	default:
		log.WithError(err).WithField("user_id", userID).Error("save calculation")
		writeJSON(w, http.StatusInternalServerError, calcResponse{Error: "Ошибка сохранения расчёта"})
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Service.List(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("list calculations")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		Material:    rec.Input.Material,
		Gas:         rec.Input.Gas,
		Parameters:  rec.Input.Parameters,
		Result:      rec.Result,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ids(w, r)
	if !ok {
		return
	}
	err := h.Service.Delete(r.Context(), userID, id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, calcResponse{Success: true})
	case errors.Is(err, repo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, calcResponse{Error: "Расчёт не найден"})
	default:
		log.WithError(err).WithField("id", id).Error("delete calculation")
		writeJSON(w, http.StatusInternalServerError, calcResponse{Error: "DB error"})
	}
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rec.Result); err != nil {
		h.exportFailed(w, rec.ID, err)
		return
	}
	attach(w, "text/csv; charset=utf-8", report.FileName(rec.Name, "csv"), buf.Bytes())
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rec.Input, rec.Result); err != nil {
		h.exportFailed(w, rec.ID, err)
		return
	}
	attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.FileName(rec.Name, "xlsx"), buf.Bytes())
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := report.WritePDF(&buf, report.Document{
		Title:       rec.Name,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		Input:       rec.Input,
		Result:      rec.Result,
		FontPath:    h.FontPath,
	})
	if err != nil {
		h.exportFailed(w, rec.ID, err)
		return
	}
	attach(w, "application/pdf", report.FileName(rec.Name, "pdf"), buf.Bytes())
}

func (h *Handler) Plot(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WritePlot(&buf, rec.Name, rec.Result, "png"); err != nil {
		h.exportFailed(w, rec.ID, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Record, bool) {
	userID, id, ok := ids(w, r)
	if !ok {
		return Record{}, false
	}
	rec, err := h.Service.Get(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.NotFound(w, r)
		return Record{}, false
	}
	if err != nil {
		log.WithError(err).WithField("id", id).Error("load calculation")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return Record{}, false
	}
	return rec, true
}

func (h *Handler) exportFailed(w http.ResponseWriter, id int, err error) {
	log.WithError(err).WithField("id", id).Error("export calculation")
	http.Error(w, "Report generation error", http.StatusInternalServerError)
}

func ids(w http.ResponseWriter, r *http.Request) (userID, id int, ok bool) {
	userID, ok = auth.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, 0, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, id, true
}

func attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Routes registers the history endpoints on an already authenticated router.
func Routes(r *mux.Router, h *Handler) {
	r.HandleFunc("/calculations", h.Create).Methods("POST")
	r.HandleFunc("/calculations", h.List).Methods("GET")
	r.HandleFunc("/calculations/{id:[0-9]+}", h.Get).Methods("GET")
	r.HandleFunc("/calculations/{id:[0-9]+}", h.Delete).Methods("DELETE")
	r.HandleFunc("/calculations/{id:[0-9]+}/export.csv", h.ExportCSV).Methods("GET")
	r.HandleFunc("/calculations/{id:[0-9]+}/export.xlsx", h.ExportXLSX).Methods("GET")
	r.HandleFunc("/calculations/{id:[0-9]+}/export.pdf", h.ExportPDF).Methods("GET")
	r.HandleFunc("/calculations/{id:[0-9]+}/plot.png", h.Plot).Methods("GET")
}
