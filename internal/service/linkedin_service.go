package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/transfer"
	"golang.org/x/oauth2"
)

const (
	linkedinAuthPath     = "/oauth/v2/authorization"
	linkedinTokenPath    = "/oauth/v2/accessToken"
	linkedinUserInfoPath = "/v2/userinfo"
	linkedinAssetsPath   = "/v2/assets"
	linkedinUGCPostsPath = "/v2/ugcPosts"
	linkedinStatsPath    = "/rest/memberCreatorPostAnalytics"

	linkedinAPIVersion    = "202506"
	restliProtocolVersion = "2.0.0"
)

// LinkedInService wraps the LinkedIn REST calls the rest of the system
// needs: the OAuth exchange, the two-step asset upload, ugcPost creation
// and per-post analytics. It holds no state beyond configuration; every
// method is a plain request/response round-trip with a bounded timeout.
type LinkedInService interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error)
	UploadImage(ctx context.Context, accessToken, linkedinID string, data []byte, mimeType string) (string, error)
	CreatePost(ctx context.Context, accessToken, linkedinID, content string, assetURNs []string) (string, error)
	FetchPostStats(ctx context.Context, accessToken, postURN string) (*transfer.PostStats, error)
}

type linkedinService struct {
	cfg          config.Config
	client       *http.Client
	uploadClient *http.Client
}

func NewLinkedInService(cfg config.Config) LinkedInService {
	return &linkedinService{
		cfg:          cfg,
		client:       &http.Client{Timeout: 10 * time.Second},
		uploadClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *linkedinService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.LinkedInClientID,
		ClientSecret: s.cfg.LinkedInClientSecret,
		RedirectURL:  s.cfg.LinkedInRedirectURI,
		Scopes:       []string{"openid", "profile", "email", "w_member_social"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.cfg.LinkedInAuthBaseURL + linkedinAuthPath,
			TokenURL:  s.cfg.LinkedInAuthBaseURL + linkedinTokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (s *linkedinService) AuthURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state)
}

func (s *linkedinService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return token, nil
}

func (s *linkedinService) UserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.LinkedInAPIBaseURL+linkedinUserInfoPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info transfer.LinkedInUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &info, nil
}

// UploadImage runs LinkedIn's two-step upload protocol: register an upload
// slot for the owner, then PUT the raw bytes to the issued URL. Returns the
// asset URN to reference from a ugcPost.
func (s *linkedinService) UploadImage(ctx context.Context, accessToken, linkedinID string, data []byte, mimeType string) (string, error) {
	register := transfer.RegisterUploadRequest{
		RegisterUploadRequest: transfer.RegisterUploadBody{
			Recipes: []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			Owner:   "urn:li:person:" + linkedinID,
			ServiceRelationships: []transfer.ServiceRelationship{
				{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
			},
		},
	}

	body, err := json.Marshal(register)
	if err != nil {
		return "", err
	}

	registerURL := s.cfg.LinkedInAPIBaseURL + linkedinAssetsPath + "?action=registerUpload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, registerURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	s.setJSONHeaders(req, accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", &UploadError{Status: resp.StatusCode, Body: string(raw)}
	}

	var registered transfer.RegisterUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	uploadURL := registered.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	assetURN := registered.Value.Asset

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	putReq.Header.Set("Authorization", "Bearer "+accessToken)
	putReq.Header.Set("Content-Type", mimeType)

	putResp, err := s.uploadClient.Do(putReq)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(putResp.Body)
		return "", &UploadError{Status: putResp.StatusCode, Body: string(raw)}
	}

	return assetURN, nil
}

// CreatePost creates a ugcPost. shareMediaCategory is NONE for a text-only
// post and IMAGE when asset URNs are supplied.
func (s *linkedinService) CreatePost(ctx context.Context, accessToken, linkedinID, content string, assetURNs []string) (string, error) {
	share := transfer.ShareContent{
		ShareCommentary:    transfer.ShareCommentary{Text: content},
		ShareMediaCategory: "NONE",
	}
	if len(assetURNs) > 0 {
		share.ShareMediaCategory = "IMAGE"
		for _, urn := range assetURNs {
			share.Media = append(share.Media, transfer.ShareMedia{Status: "READY", Media: urn})
		}
	}

	post := transfer.UGCPostRequest{
		Author:         "urn:li:person:" + linkedinID,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]transfer.ShareContent{
			"com.linkedin.ugc.ShareContent": share,
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(post)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LinkedInAPIBaseURL+linkedinUGCPostsPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	s.setJSONHeaders(req, accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr transfer.LinkedInErrorResponse
		message := "unknown LinkedIn error"
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		return "", &PublishError{Status: resp.StatusCode, Message: message}
	}

	var created transfer.UGCPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return created.ID, nil
}

// FetchPostStats queries memberCreatorPostAnalytics one metric at a time.
// Metrics the API refuses stay nil; returns (nil, nil) when every metric
// failed, matching an account without the analytics scope.
func (s *linkedinService) FetchPostStats(ctx context.Context, accessToken, postURN string) (*transfer.PostStats, error) {
	encodedURN := url.QueryEscape(postURN)
	var entityParam string
	if strings.Contains(postURN, "share") {
		entityParam = fmt.Sprintf("(share:%s)", encodedURN)
	} else {
		entityParam = fmt.Sprintf("(ugc:%s)", encodedURN)
	}

	stats := transfer.PostStats{}
	targets := []struct {
		metric string
		dest   **int
	}{
		{"REACTION", &stats.Likes},
		{"COMMENT", &stats.Comments},
		{"IMPRESSION", &stats.Views},
		{"RESHARE", &stats.Shares},
	}

	anyFetched := false
	for _, t := range targets {
		statsURL := fmt.Sprintf("%s%s?q=entity&entity=%s&queryType=%s&aggregation=TOTAL",
			s.cfg.LinkedInAPIBaseURL, linkedinStatsPath, entityParam, t.metric)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statsURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("LinkedIn-Version", linkedinAPIVersion)
		req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)

		resp, err := s.client.Do(req)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var analytics transfer.PostAnalyticsResponse
			if err := json.NewDecoder(resp.Body).Decode(&analytics); err == nil {
				count := 0
				if len(analytics.Elements) > 0 {
					count = analytics.Elements[0].Count
				}
				*t.dest = &count
				anyFetched = true
			}
		}
		resp.Body.Close()
	}

	if !anyFetched {
		return nil, nil
	}
	return &stats, nil
}

func (s *linkedinService) setJSONHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
}
