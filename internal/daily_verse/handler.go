package dailyverse

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
	"github.com/taiwoajasa245/verse-courier/pkg/response"
)

type DailyVerseHandler struct {
	service DailyVerseService
}

func NewDailyVerseHandler(service DailyVerseService) DailyVerseHandler {
	return DailyVerseHandler{service: service}
}

func (h *DailyVerseHandler) TopicsHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.Topics(), "successfully")
}

func (h *DailyVerseHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.Error(w, http.StatusBadRequest, "Missing required fields", map[string]string{
			"q": "q is required",
		})
		return
	}

	limit := DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	response.Success(w, h.service.Search(query, limit), "successfully")
}

func (h *DailyVerseHandler) PassageHandler(w http.ResponseWriter, r *http.Request) {
	chapter, errC := strconv.Atoi(chi.URLParam(r, "chapter"))
	verse, errV := strconv.Atoi(chi.URLParam(r, "verse"))
	if errC != nil || errV != nil {
		response.Error(w, http.StatusBadRequest, "Invalid reference", "chapter and verse must be numbers")
		return
	}

	v, err := h.service.Passage(chi.URLParam(r, "book"), chapter, verse)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Passage not found", err.Error())
		return
	}
	response.Success(w, v, "successfully")
}

func (h *DailyVerseHandler) GetSubscriberHandler(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetSubscriber(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get subscriber", err)
		return
	}
	response.Success(w, sub, "successfully")
}

func (h *DailyVerseHandler) UpdateSubscriberHandler(w http.ResponseWriter, r *http.Request) {
	var req subscriber.Update
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	sub, err := h.service.UpdateSubscriber(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, "Failed to update subscriber", err)
		return
	}
	response.Success(w, sub, "successfully")
}

func (h *DailyVerseHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	result, err := h.service.Ask(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, "Failed to deliver verses", err)
		return
	}
	if len(result.Verses) == 0 {
		response.Success(w, result, "no verses available")
		return
	}
	response.Success(w, result, "successfully")
}

func writeServiceError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, subscriber.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, subscriber.ErrInvalidSlot),
		errors.Is(err, subscriber.ErrInvalidID),
		errors.Is(err, ErrEmptyTopic):
		status = http.StatusBadRequest
	case errors.Is(err, ErrDeliveryFailed):
		status = http.StatusBadGateway
	}
	response.Error(w, status, message, err.Error())
}
