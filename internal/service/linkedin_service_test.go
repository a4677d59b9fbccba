package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/transfer"
)

func linkedinTestService(srv *httptest.Server) LinkedInService {
	return NewLinkedInService(config.Config{
		LinkedInClientID:     "client-id",
		LinkedInClientSecret: "client-secret",
		LinkedInRedirectURI:  "http://localhost:3000/login/callback",
		LinkedInAPIBaseURL:   srv.URL,
		LinkedInAuthBaseURL:  srv.URL,
	})
}

func TestAuthURLCarriesState(t *testing.T) {
	s := NewLinkedInService(config.Config{
		LinkedInClientID:    "client-id",
		LinkedInRedirectURI: "http://localhost:3000/login/callback",
		LinkedInAuthBaseURL: "https://www.linkedin.com",
	})

	u := s.AuthURL("login.abc123")
	assert.Contains(t, u, "https://www.linkedin.com/oauth/v2/authorization")
	assert.Contains(t, u, "state=login.abc123")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "w_member_social")
}

func TestUploadImageTwoStepProtocol(t *testing.T) {
	var registerBody transfer.RegisterUploadRequest
	var uploadedBytes []byte
	var uploadContentType string

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v2/assets", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "registerUpload", r.URL.Query().Get("action"))
		require.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&registerBody))

		fmt.Fprintf(w, `{"value":{"uploadMechanism":{"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest":{"uploadUrl":%q}},"asset":"urn:li:digitalmediaAsset:abc"}}`,
			srv.URL+"/upload-slot")
	})
	mux.HandleFunc("/upload-slot", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		uploadContentType = r.Header.Get("Content-Type")
		uploadedBytes, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	})

	s := linkedinTestService(srv)
	urn, err := s.UploadImage(context.Background(), "token123", "member1", []byte("image-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "urn:li:digitalmediaAsset:abc", urn)
	assert.Equal(t, "urn:li:person:member1", registerBody.RegisterUploadRequest.Owner)
	assert.Equal(t, []byte("image-bytes"), uploadedBytes)
	assert.Equal(t, "image/png", uploadContentType)
}

func TestUploadImageRegisterRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "no upload for you")
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	_, err := s.UploadImage(context.Background(), "token123", "member1", []byte("x"), "image/png")

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusForbidden, uerr.Status)
	assert.Equal(t, "no upload for you", uerr.Body)
}

func TestCreatePostTextOnly(t *testing.T) {
	var posted transfer.UGCPostRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/ugcPosts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"urn:li:share:999"}`)
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	id, err := s.CreatePost(context.Background(), "token123", "member1", "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, "urn:li:share:999", id)
	assert.Equal(t, "urn:li:person:member1", posted.Author)
	assert.Equal(t, "PUBLISHED", posted.LifecycleState)
	share := posted.SpecificContent["com.linkedin.ugc.ShareContent"]
	assert.Equal(t, "hello", share.ShareCommentary.Text)
	assert.Equal(t, "NONE", share.ShareMediaCategory)
	assert.Empty(t, share.Media)
}

func TestCreatePostWithImages(t *testing.T) {
	var posted transfer.UGCPostRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		fmt.Fprint(w, `{"id":"urn:li:share:1000"}`)
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	_, err := s.CreatePost(context.Background(), "token123", "member1", "with pics",
		[]string{"urn:li:digitalmediaAsset:a", "urn:li:digitalmediaAsset:b"})
	require.NoError(t, err)

	share := posted.SpecificContent["com.linkedin.ugc.ShareContent"]
	assert.Equal(t, "IMAGE", share.ShareMediaCategory)
	require.Len(t, share.Media, 2)
	assert.Equal(t, "READY", share.Media[0].Status)
	assert.Equal(t, "urn:li:digitalmediaAsset:a", share.Media[0].Media)
}

func TestCreatePostRejectionKeepsPlatformMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"duplicate","serviceErrorCode":100,"status":422}`)
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	_, err := s.CreatePost(context.Background(), "token123", "member1", "again", nil)

	var perr *PublishError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnprocessableEntity, perr.Status)
	assert.Equal(t, "duplicate", perr.Message)
}

func TestCreatePostRejectionWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	_, err := s.CreatePost(context.Background(), "token123", "member1", "again", nil)

	var perr *PublishError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unknown LinkedIn error", perr.Message)
}

func TestFetchPostStatsPerMetric(t *testing.T) {
	counts := map[string]int{
		"REACTION":   12,
		"COMMENT":    3,
		"IMPRESSION": 480,
		"RESHARE":    2,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/memberCreatorPostAnalytics", r.URL.Path)
		require.Equal(t, "202506", r.Header.Get("LinkedIn-Version"))
		require.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		metric := r.URL.Query().Get("queryType")
		fmt.Fprintf(w, `{"elements":[{"count":%d}]}`, counts[metric])
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	stats, err := s.FetchPostStats(context.Background(), "token123", "urn:li:share:999")
	require.NoError(t, err)
	require.NotNil(t, stats)

	require.NotNil(t, stats.Likes)
	assert.Equal(t, 12, *stats.Likes)
	require.NotNil(t, stats.Comments)
	assert.Equal(t, 3, *stats.Comments)
	require.NotNil(t, stats.Views)
	assert.Equal(t, 480, *stats.Views)
	require.NotNil(t, stats.Shares)
	assert.Equal(t, 2, *stats.Shares)
}

func TestFetchPostStatsAllDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := linkedinTestService(srv)
	stats, err := s.FetchPostStats(context.Background(), "token123", "urn:li:ugcPost:7")
	require.NoError(t, err)
	assert.Nil(t, stats)
}
