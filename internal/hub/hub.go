// Package hub implements C7's core logic: the request/response types and
// dispatch methods the RPC facade (internal/rpcwire) exposes over the wire.
// Grounded on original_source's server.rs PluginHub trait impl, wiring
// together the path validator (C1), archive store (C2), token registry
// (C3), extractor (C4), tree index (C5) and text replacer (C6) the way
// the teacher's daemon.go wires a turboServer struct around its own
// component set.
package hub

import (
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/yazhouio/extension-hub/internal/extract"
	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/huberr"
	"github.com/yazhouio/extension-hub/internal/metrics"
	"github.com/yazhouio/extension-hub/internal/pathsafe"
	"github.com/yazhouio/extension-hub/internal/replace"
	"github.com/yazhouio/extension-hub/internal/store"
	"github.com/yazhouio/extension-hub/internal/tokens"
	"github.com/yazhouio/extension-hub/internal/treeindex"
)

// UnTarRequest mirrors spec.md's UnTarRequest, also embedded inside
// UploadTarRequest's optional un_tar field.
type UnTarRequest struct {
	TarHash   string `json:"tar_hash"`
	TargetDir string `json:"target_dir"`
	Overwrite bool   `json:"overwrite,omitempty"`
}

// UnTarResponse is always empty on success; errors carry a huberr.Code.
type UnTarResponse struct{}

// CheckTarRequest mirrors spec.md's CheckTarRequest.
type CheckTarRequest struct {
	TarHash  string `json:"tar_hash"`
	FilePath string `json:"file_path"`
}

// CheckTarResponse is always empty on success.
type CheckTarResponse struct{}

// UploadTarRequest mirrors spec.md's UploadTarRequest.
type UploadTarRequest struct {
	TarHash string        `json:"tar_hash"`
	UnTar   *UnTarRequest `json:"un_tar,omitempty"`
}

// UploadTarResponse carries the single-use upload token the client must POST
// archive bytes to.
type UploadTarResponse struct {
	UploadURL string `json:"upload_url"`
}

// DownloadTarRequest mirrors spec.md's DownloadTarRequest.
type DownloadTarRequest struct {
	TarHash string `json:"tar_hash"`
}

// DownloadTarResponse carries the repeatable-until-expiry download token.
type DownloadTarResponse struct {
	DownloadURL string `json:"download_url"`
}

// ReplaceTextRequest mirrors spec.md's ReplaceTextRequest.
type ReplaceTextRequest struct {
	TargetDir string   `json:"target_dir"`
	OldText   string   `json:"old_text"`
	NewText   string   `json:"new_text"`
	Suffix    []string `json:"suffix"`
}

// ReplaceTextResponse is always empty on success.
type ReplaceTextResponse struct{}

// ClearDirResponse and ClearTarDirResponse are always empty: both RPCs are
// reserved handlers in the original core (spec.md's operations table marks
// them "always success-empty in current core") and are kept as no-ops here
// rather than dropped, so a client that calls them gets the same contract.
type ClearDirResponse struct{}
type ClearTarDirResponse struct{}

// Hub is C7's core: the receiver every RPC method in this package hangs off.
// It owns nothing about transport — internal/rpcwire and internal/bulk adapt
// this type to gRPC and HTTP respectively.
type Hub struct {
	baseDir fs.AbsolutePath

	store     *store.Store
	tokens    *tokens.Registry
	extractor *extract.Extractor
	index     *treeindex.Index
	replacer  *replace.Replacer
	metrics   *metrics.Recorder
	logger    hclog.Logger
}

// New wires a Hub from its components. baseDir is the root extracted trees
// live under; the Store and Registry are constructed by the caller (cmd/server)
// so their directories and TTLs come from configuration. A nil logger is
// replaced with hclog.NewNullLogger so call sites (and tests) never need a
// nil check of their own.
func New(baseDir fs.AbsolutePath, s *store.Store, tr *tokens.Registry, rec *metrics.Recorder, logger hclog.Logger) *Hub {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	idx := treeindex.New()
	return &Hub{
		baseDir:   baseDir,
		store:     s,
		tokens:    tr,
		extractor: extract.New(baseDir, s, idx),
		index:     idx,
		replacer:  replace.New(baseDir, 0),
		metrics:   rec,
		logger:    logger,
	}
}

// Store, Tokens and Extractor expose the wired components to the bulk-plane
// facade (internal/bulk), which needs to consume tickets and stream bytes
// directly rather than through an RPC round trip.
func (h *Hub) Store() *store.Store           { return h.store }
func (h *Hub) Tokens() *tokens.Registry      { return h.tokens }
func (h *Hub) Extractor() *extract.Extractor { return h.extractor }

// CheckTar reports whether hash is stored, was previously extracted into
// file_path, and file_path currently exists as a directory — the three
// conjuncts spec.md's operations table requires.
func (h *Hub) CheckTar(req CheckTarRequest) (resp CheckTarResponse, err error) {
	corrID := uuid.NewString()
	h.logger.Debug("check_tar", "corr_id", corrID, "tar_hash", req.TarHash, "file_path", req.FilePath)
	defer func() { h.logOutcome("CheckTar", corrID, err) }()

	if !h.store.Has(req.TarHash) {
		return CheckTarResponse{}, huberr.TarNotExist(req.TarHash)
	}
	if err := pathsafe.Validate(req.FilePath); err != nil {
		return CheckTarResponse{}, err
	}
	if !h.index.Contains(req.TarHash, req.FilePath) {
		return CheckTarResponse{}, huberr.DirNotExist(req.FilePath)
	}
	if !h.baseDir.Join(req.FilePath).IsDirectory() {
		return CheckTarResponse{}, huberr.FileNotExist(req.FilePath)
	}
	return CheckTarResponse{}, nil
}

// UploadTar issues a single-use upload token for req.TarHash, optionally
// chaining a post-extract action the bulk-plane handler runs once the bytes
// land and verify (spec.md §4.2's data-flow diagram).
func (h *Hub) UploadTar(req UploadTarRequest) (resp UploadTarResponse, err error) {
	corrID := uuid.NewString()
	h.logger.Debug("upload_tar", "corr_id", corrID, "tar_hash", req.TarHash)
	defer func() { h.logOutcome("UploadTar", corrID, err) }()

	var post *tokens.PostExtract
	if req.UnTar != nil {
		if err := pathsafe.Validate(req.UnTar.TargetDir); err != nil {
			return UploadTarResponse{}, err
		}
		post = &tokens.PostExtract{TargetDir: req.UnTar.TargetDir, Overwrite: req.UnTar.Overwrite}
	}
	token, err := h.tokens.IssueUpload(req.TarHash, post)
	if err != nil {
		return UploadTarResponse{}, err
	}
	return UploadTarResponse{UploadURL: token}, nil
}

// DownloadTar issues a repeatable download token for req.TarHash. Unlike
// UploadTar this does not require the hash to already exist: a client may
// race a download token against a concurrent upload, and the bulk-plane GET
// will simply fail with TarNotExist until the upload lands.
func (h *Hub) DownloadTar(req DownloadTarRequest) (resp DownloadTarResponse, err error) {
	corrID := uuid.NewString()
	h.logger.Debug("download_tar", "corr_id", corrID, "tar_hash", req.TarHash)
	defer func() { h.logOutcome("DownloadTar", corrID, err) }()

	token, err := h.tokens.IssueDownload(req.TarHash)
	if err != nil {
		return DownloadTarResponse{}, err
	}
	return DownloadTarResponse{DownloadURL: token}, nil
}

// UnTar extracts a stored archive directly, without going through the
// upload/token dance — used both by the post-extract chain off UploadTar and
// by a client that already knows the archive is present.
func (h *Hub) UnTar(req UnTarRequest) (resp UnTarResponse, err error) {
	corrID := uuid.NewString()
	h.logger.Debug("un_tar", "corr_id", corrID, "tar_hash", req.TarHash, "target_dir", req.TargetDir, "overwrite", req.Overwrite)
	defer func() { h.logOutcome("UnTar", corrID, err) }()

	err = h.extractor.Extract(req.TarHash, req.TargetDir, req.Overwrite)
	h.observeExtract(err)
	if err != nil {
		return UnTarResponse{}, err
	}
	return UnTarResponse{}, nil
}

// ReplaceText runs C6 over target_dir.
func (h *Hub) ReplaceText(req ReplaceTextRequest) (resp ReplaceTextResponse, err error) {
	corrID := uuid.NewString()
	h.logger.Debug("replace_text", "corr_id", corrID, "target_dir", req.TargetDir)
	defer func() { h.logOutcome("ReplaceText", corrID, err) }()

	err = h.replacer.Replace(replace.Request{
		SourceDir: req.TargetDir,
		OutputDir: req.TargetDir,
		OldText:   req.OldText,
		NewText:   req.NewText,
		Suffixes:  req.Suffix,
	})
	h.observeReplace(err)
	if err != nil {
		return ReplaceTextResponse{}, err
	}
	return ReplaceTextResponse{}, nil
}

// ClearDir and ClearTarDir are reserved handlers the original core always
// answers with success-empty; no current operation names a directory or tar
// to clear, so there is nothing for these to do yet.
func (h *Hub) ClearDir() (ClearDirResponse, error)       { return ClearDirResponse{}, nil }
func (h *Hub) ClearTarDir() (ClearTarDirResponse, error) { return ClearTarDirResponse{}, nil }

// logOutcome logs a single request's result at the level spec.md's operator
// guidance calls for: Debug on success, Warn for errors a client caused
// (bad path, missing hash, expired ticket...), Error for IOError/unexpected
// failures not rooted in the caller's input. Errors logged at Error are
// wrapped with pkg/errors so the log line carries a stack trace back to
// where the failure actually originated, past the RPC/HTTP boundary that
// otherwise collapses it to a flat message.
func (h *Hub) logOutcome(op, corrID string, err error) {
	if err == nil {
		h.logger.Debug(op+" ok", "corr_id", corrID)
		return
	}
	hubErr, ok := err.(*huberr.HubError)
	if !ok {
		h.logger.Error(op+" failed", "corr_id", corrID, "err", errors.Wrap(err, op))
		return
	}
	switch hubErr.Code {
	case huberr.CodeIOError, huberr.CodeOtherError, huberr.CodeConfigureError,
		huberr.CodeProstDecodeError, huberr.CodeProstEncodeError,
		huberr.CodeMalformedApiResponse, huberr.CodeUnSupportedErrorCode:
		h.logger.Error(op+" failed", "corr_id", corrID, "code", hubErr.Code, "err", errors.Wrap(hubErr, op))
	default:
		h.logger.Warn(op+" rejected", "corr_id", corrID, "code", hubErr.Code, "err", hubErr)
	}
}

func (h *Hub) observeExtract(err error) {
	if h.metrics != nil {
		h.metrics.ObserveExtract(err)
	}
}

func (h *Hub) observeReplace(err error) {
	if h.metrics != nil {
		h.metrics.ObserveReplace(err)
	}
}
