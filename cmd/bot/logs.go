package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
	"github.com/Jacobbrewer1/gavel/pkg/request"
	"github.com/gorilla/mux"
)

// getLogController serves a transcript log by its retrieval key. The entry is
// returned as data; rendering is the viewer's concern.
func getLogController(a IApp) Controller {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]

		entry, err := a.LogDal(r.Context()).GetLogByKey(key)
		if errors.Is(err, dataaccess.ErrLogNotFound) {
			w.WriteHeader(http.StatusNotFound)
			if err := json.NewEncoder(w).Encode(request.NewMessage("No log found for key %s", key)); err != nil {
				a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
			}
			return
		} else if err != nil {
			a.Log().Error("Error getting log entry",
				slog.String(logging.KeyLog, key),
				slog.String(logging.KeyError, err.Error()),
			)
			w.WriteHeader(http.StatusInternalServerError)
			if err := json.NewEncoder(w).Encode(request.NewMessage("Error getting log")); err != nil {
				a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			a.Log().Error("Error encoding log entry", slog.String(logging.KeyError, err.Error()))
		}
	}
}
