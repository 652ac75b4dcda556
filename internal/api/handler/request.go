package handler

import (
	"encoding/json"
	"errors"
	"gamification_hub/internal/common"
	"gamification_hub/internal/platform/logger"
	"io"
	"net/http"
	"strconv"
)

// maxBodyBytes bounds request bodies; solutions carry base64 files inline.
const maxBodyBytes = 16 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			common.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			common.RespondWithError(w, http.StatusBadRequest, "Request body required")
		default:
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		}
		return false
	}
	return true
}

// respondError writes err with its mapped status. Server-side failures are
// logged with the request logger and hidden from the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", "error", err)
	}
	common.RespondWithServiceError(w, err)
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
