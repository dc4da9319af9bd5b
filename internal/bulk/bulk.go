// Package bulk implements C8, the bulk transfer facade: two HTTP endpoints,
// each keyed by a single-purpose token issued over the control plane, that
// move archive bytes in and out of the store without going through the RPC
// connection itself. Grounded on the teacher's cache_http.go tar/gzip
// handling (request limiting, streaming copy) adapted from a cache *client*
// into a server, and on the go-chi router shape used throughout
// celestiaorg-popsigner/control-plane's handler package.
package bulk

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/yazhouio/extension-hub/internal/hub"
	"github.com/yazhouio/extension-hub/internal/huberr"
	"github.com/yazhouio/extension-hub/internal/metrics"
	"github.com/yazhouio/extension-hub/internal/tokens"
)

// MaxBodyBytes is the 250 MiB per-request cap spec.md §4.8 requires.
const MaxBodyBytes = 250 * 1024 * 1024

// Handler is C8: it holds the wired Hub and answers the upload/download
// routes. It has no opinion about the RPC control plane; cmd/server mounts
// it as a sibling HTTP server or router.
type Handler struct {
	hub     *hub.Hub
	metrics *metrics.Recorder
}

// New constructs a bulk-plane Handler around h.
func New(h *hub.Hub, rec *metrics.Recorder) *Handler {
	return &Handler{hub: h, metrics: rec}
}

// Routes returns a chi router with the two token-keyed endpoints mounted,
// plus permissive CORS for browser-based clients the way the control plane
// does it.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"*"},
	}))
	r.Post("/file/{token}", h.upload)
	r.Get("/file/{token}", h.download)
	return r
}

// upload implements spec.md §4.8's POST /file/<token> steps 1-3.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ticket, err := h.hub.Tokens().TakeUpload(token)
	if err != nil {
		h.observeUpload(err)
		writeError(w, err)
		return
	}

	if h.hub.Store().Has(ticket.Hash) {
		err := h.maybePostExtract(ticket)
		h.observeUpload(err)
		if err != nil {
			writeError(w, err)
			return
		}
		h.hub.Tokens().ConsumeUpload(token)
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		hubErr := huberr.IOError(err)
		h.observeUpload(hubErr)
		writeError(w, hubErr)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		hubErr := huberr.IOError(err)
		h.observeUpload(hubErr)
		writeError(w, hubErr)
		return
	}
	defer file.Close()

	if err := h.hub.Store().Ingest(ticket.Hash, file); err != nil {
		h.observeIngest(err)
		h.observeUpload(err)
		writeError(w, err)
		return
	}
	h.observeIngest(nil)

	if err := h.maybePostExtract(ticket); err != nil {
		h.observeUpload(err)
		writeError(w, err)
		return
	}

	h.hub.Tokens().ConsumeUpload(token)
	h.observeUpload(nil)
	w.WriteHeader(http.StatusOK)
}

// maybePostExtract runs the upload ticket's chained UnTar, if the UploadTar
// RPC that issued it requested one.
func (h *Handler) maybePostExtract(ticket *tokens.UploadTicket) error {
	if ticket.PostExtract == nil {
		return nil
	}
	_, err := h.hub.UnTar(hub.UnTarRequest{
		TarHash:   ticket.Hash,
		TargetDir: ticket.PostExtract.TargetDir,
		Overwrite: ticket.PostExtract.Overwrite,
	})
	return err
}

// download implements spec.md §4.8's GET /file/<token> steps 1-3.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ticket, err := h.hub.Tokens().PeekDownload(token)
	if err != nil {
		h.observeDownload(err)
		writeError(w, err)
		return
	}

	path, err := h.hub.Store().Path(ticket.Hash)
	if err != nil {
		h.observeDownload(err)
		writeError(w, err)
		return
	}

	f, err := path.Open()
	if err != nil {
		hubErr := huberr.TarNotExist(ticket.Hash)
		h.observeDownload(hubErr)
		writeError(w, hubErr)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.tar.gz"`, ticket.Hash))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
	h.observeDownload(nil)
}

func (h *Handler) observeIngest(err error) {
	if h.metrics != nil {
		h.metrics.ObserveIngest(err)
	}
}

func (h *Handler) observeUpload(err error) {
	if h.metrics != nil {
		h.metrics.ObserveUpload(err)
	}
}

func (h *Handler) observeDownload(err error) {
	if h.metrics != nil {
		h.metrics.ObserveDownload(err)
	}
}

// writeError maps a *huberr.HubError onto spec.md §4.8's status table: 400
// for a bad path, 404 for any not-found-shaped code, 500 otherwise.
func writeError(w http.ResponseWriter, err error) {
	hubErr, ok := err.(*huberr.HubError)
	if !ok {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch hubErr.Code {
	case huberr.CodeInvalidPath:
		http.Error(w, hubErr.Error(), http.StatusBadRequest)
	case huberr.CodeTarNotExist, huberr.CodeFileNotExist, huberr.CodeDirNotExist, huberr.CodeResourceNotFound:
		http.Error(w, hubErr.Error(), http.StatusNotFound)
	default:
		http.Error(w, hubErr.Error(), http.StatusInternalServerError)
	}
}
