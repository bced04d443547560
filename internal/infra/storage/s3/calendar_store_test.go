package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalendarStoreRequiresEndpointAndBucket(t *testing.T) {
	_, err := NewCalendarStore(Options{Bucket: "calendars"}, nil)
	require.Error(t, err)
	_, err = NewCalendarStore(Options{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)
}

func TestPresignUsesPublicEndpoint(t *testing.T) {
	store, err := NewCalendarStore(Options{
		Endpoint:       "http://minio:9000",
		PublicEndpoint: "https://files.example.com",
		AccessKey:      "key",
		SecretKey:      "secret",
		Bucket:         "calendars",
	}, nil)
	require.NoError(t, err)

	link, err := store.presign(context.Background(), "p1/export.json")
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "files.example.com", u.Host)
	assert.True(t, strings.HasSuffix(u.Path, "/calendars/p1/export.json"), u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestUploadValidatesInput(t *testing.T) {
	store, err := NewCalendarStore(Options{Endpoint: "localhost:9000", Bucket: "calendars"}, nil)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "k", nil, "")
	require.Error(t, err)
	_, err = store.Upload(context.Background(), " / ", strings.NewReader("{}"), "")
	require.Error(t, err)
}
