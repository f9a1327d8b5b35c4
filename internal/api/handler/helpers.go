package handler

import (
	"log"
	"net/http"

	"taskbackend/internal/common"
)

// respondServiceError translates a service error into the wire response.
// Internal faults are logged with their full chain but reach the client as
// an opaque 500 body.
func respondServiceError(w http.ResponseWriter, err error) {
	status := common.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		common.RespondWithError(w, status, common.ErrInternalServer.Error())
		return
	}
	common.RespondWithError(w, status, err.Error())
}
