package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"google.golang.org/protobuf/encoding/protojson"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as a google.rpc.Status. Internal failures keep
// their detail in the log only.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.From(err)
	if appErr.Code.Internal() {
		h.logf("http: %v", err)
	}
	body, marshalErr := protojson.Marshal(appErr.ToGRPCStatus().Proto())
	if marshalErr != nil {
		h.logf("http: marshal error status: %v", marshalErr)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code.HTTPStatus())
	_, _ = w.Write(body)
}

// decodeJSON reads one JSON object from the body. An empty body decodes to
// the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err), err)
	}
	return nil
}
