// Package tokens implements C3, the token registry: issues single-use
// random tokens binding a future HTTP bulk-plane operation to a registered
// request record, and expires them on a timer. Grounded on
// original_source's upload_path_map/DashMap usage, generalized to two
// independently-ticking ticket kinds per spec.md §3.
package tokens

import (
	"crypto/rand"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/yazhouio/extension-hub/internal/huberr"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const tokenLength = 64

// PostExtract describes an extraction to run once the archive bytes land,
// as requested by the UploadTar RPC's optional un_tar field.
type PostExtract struct {
	TargetDir string
	Overwrite bool
}

// UploadTicket is the record bound to an upload token.
type UploadTicket struct {
	Token       string
	Hash        string
	PostExtract *PostExtract
	CreatedAt   time.Time
}

// DownloadTicket is the record bound to a download token.
type DownloadTicket struct {
	Token     string
	Hash      string
	CreatedAt time.Time
}

// Registry holds the two independent ticket maps (spec.md §4.3). Each
// ticket's expiry is a standalone time.AfterFunc timer rather than a shared
// sweep loop — the "spawn a task that sleeps then deletes" model spec.md §9
// calls out as the baseline (a timer wheel is an allowed, not required,
// optimization).
type Registry struct {
	uploadTTL   time.Duration
	downloadTTL time.Duration

	uploads   *xsync.MapOf[string, *UploadTicket]
	downloads *xsync.MapOf[string, *DownloadTicket]
}

// New constructs a Registry with the given upload/download ticket TTLs.
func New(uploadTTL, downloadTTL time.Duration) *Registry {
	return &Registry{
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
		uploads:     xsync.NewMapOf[string, *UploadTicket](),
		downloads:   xsync.NewMapOf[string, *DownloadTicket](),
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, tokenLength)
	for i, b := range buf {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out), nil
}

// IssueUpload generates a token for a future upload of hash, optionally
// chained to a post-extract action, and schedules its expiry after the
// registry's upload TTL (30s by default, per spec.md §3).
func (r *Registry) IssueUpload(hash string, post *PostExtract) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", huberr.Other(err)
	}
	ticket := &UploadTicket{Token: token, Hash: hash, PostExtract: post, CreatedAt: time.Now()}
	r.uploads.Store(token, ticket)
	time.AfterFunc(r.uploadTTL, func() { r.uploads.Delete(token) })
	return token, nil
}

// IssueDownload generates a token for future, repeatable downloads of hash,
// expiring after the registry's download TTL (30m by default).
func (r *Registry) IssueDownload(hash string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", huberr.Other(err)
	}
	ticket := &DownloadTicket{Token: token, Hash: hash, CreatedAt: time.Now()}
	r.downloads.Store(token, ticket)
	time.AfterFunc(r.downloadTTL, func() { r.downloads.Delete(token) })
	return token, nil
}

// TakeUpload returns the upload ticket for token if it is present and not
// expired. Removal on successful consumption is the caller's job (see
// spec.md §4.3) — the expiry timer will clean the entry up regardless.
func (r *Registry) TakeUpload(token string) (*UploadTicket, error) {
	ticket, ok := r.uploads.Load(token)
	if !ok {
		return nil, huberr.ResourceNotFound(token)
	}
	return ticket, nil
}

// ConsumeUpload removes an upload ticket after it has been acted on. Calling
// this twice, or calling it on an already-expired token, is a no-op.
func (r *Registry) ConsumeUpload(token string) {
	r.uploads.Delete(token)
}

// PeekDownload returns the download ticket for token if present and not
// expired. It does not remove the entry: download tokens are consumable
// multiple times until they expire (spec.md invariant I4).
func (r *Registry) PeekDownload(token string) (*DownloadTicket, error) {
	ticket, ok := r.downloads.Load(token)
	if !ok {
		return nil, huberr.ResourceNotFound(token)
	}
	return ticket, nil
}
