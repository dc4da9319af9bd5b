package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazhouio/extension-hub/internal/huberr"
)

func TestIssueAndTakeUpload(t *testing.T) {
	r := New(30*time.Second, 30*time.Minute)

	token, err := r.IssueUpload("deadbeef", nil)
	require.NoError(t, err)
	assert.Len(t, token, tokenLength)

	ticket, err := r.TakeUpload(token)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", ticket.Hash)
	assert.Nil(t, ticket.PostExtract)
}

func TestUploadTicket_SingleUse(t *testing.T) {
	r := New(30*time.Second, 30*time.Minute)
	token, err := r.IssueUpload("hash", nil)
	require.NoError(t, err)

	_, err = r.TakeUpload(token)
	require.NoError(t, err)
	r.ConsumeUpload(token)

	_, err = r.TakeUpload(token)
	require.Error(t, err)
	var hubErr *huberr.HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, huberr.CodeResourceNotFound, hubErr.Code)
}

func TestUploadTicket_Expires(t *testing.T) {
	r := New(20*time.Millisecond, 30*time.Minute)
	token, err := r.IssueUpload("hash", nil)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = r.TakeUpload(token)
	require.Error(t, err)
}

func TestDownloadTicket_NotConsumedOnPeek(t *testing.T) {
	r := New(30*time.Second, 30*time.Minute)
	token, err := r.IssueDownload("hash")
	require.NoError(t, err)

	_, err = r.PeekDownload(token)
	require.NoError(t, err)
	_, err = r.PeekDownload(token)
	require.NoError(t, err, "download tickets may be consumed more than once")
}

func TestDownloadTicket_Expires(t *testing.T) {
	r := New(30*time.Second, 20*time.Millisecond)
	token, err := r.IssueDownload("hash")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	_, err = r.PeekDownload(token)
	require.Error(t, err)
}
