package job

import (
	"context"
	"database/sql"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/service"
	"github.com/devrobins/linkpost/internal/transfer"
	"github.com/devrobins/linkpost/pkg/utils"
)

var testSecretKey = []byte("0123456789abcdef0123456789abcdef")

type fakeScheduledPostRepo struct {
	mu    sync.Mutex
	posts []*models.ScheduledPost
}

func (f *fakeScheduledPostRepo) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = int64(len(f.posts) + 1)
	f.posts = append(f.posts, post)
	return post.ID, nil
}

func (f *fakeScheduledPostRepo) GetByID(ctx context.Context, id int64, userID *int64) (*models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeScheduledPostRepo) ListByUser(ctx context.Context, userID *int64, since *time.Time, search string) ([]*models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.ScheduledPost(nil), f.posts...), nil
}

func (f *fakeScheduledPostRepo) UpdatePending(ctx context.Context, id int64, userID *int64, content string, scheduledAt time.Time) (bool, error) {
	return false, nil
}

func (f *fakeScheduledPostRepo) CancelPending(ctx context.Context, id int64, userID *int64) (bool, error) {
	return false, nil
}

// ClaimDue mirrors the skip-locked query: the oldest due pending row is
// handed out and marked claimed so a concurrent caller cannot take it again.
func (f *fakeScheduledPostRepo) ClaimDue(ctx context.Context) (*models.ScheduledPost, *sql.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var due *models.ScheduledPost
	for _, p := range f.posts {
		if p.Status != models.PostStatusPending || p.ScheduledAt.After(now) {
			continue
		}
		if due == nil || p.ScheduledAt.Before(due.ScheduledAt) {
			due = p
		}
	}
	if due == nil {
		return nil, nil, nil
	}
	due.Status = "claimed"
	return due, nil, nil
}

func (f *fakeScheduledPostRepo) MarkPublished(ctx context.Context, tx *sql.Tx, id int64, publishedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == id {
			p.Status = models.PostStatusPublished
			p.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (f *fakeScheduledPostRepo) MarkFailed(ctx context.Context, tx *sql.Tx, id int64, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == id {
			p.Status = models.PostStatusFailed
			p.ErrorMessage = errorMessage
		}
	}
	return nil
}

type fakeAccountRepo struct {
	account *models.LinkedInAccount
}

func (f *fakeAccountRepo) GetByUser(ctx context.Context, userID *int64) (*models.LinkedInAccount, error) {
	return f.account, nil
}

func (f *fakeAccountRepo) GetByLinkedInID(ctx context.Context, linkedinID string) (*models.LinkedInAccount, error) {
	return f.account, nil
}

func (f *fakeAccountRepo) Upsert(ctx context.Context, account *models.LinkedInAccount) (int64, error) {
	f.account = account
	return 1, nil
}

func (f *fakeAccountRepo) RemoveByUser(ctx context.Context, userID *int64) error {
	f.account = nil
	return nil
}

type fakePublishedPostRepo struct {
	mu      sync.Mutex
	records []*models.PublishedPost
}

func (f *fakePublishedPostRepo) Create(ctx context.Context, post *models.PublishedPost) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = int64(len(f.records) + 1)
	f.records = append(f.records, post)
	return post.ID, nil
}

func (f *fakePublishedPostRepo) ListByUser(ctx context.Context, userID *int64, limit int) ([]*models.PublishedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.PublishedPost(nil), f.records...), nil
}

func (f *fakePublishedPostRepo) ListRecent(ctx context.Context, cutoff time.Time) ([]*models.PublishedPost, error) {
	return f.ListByUser(ctx, nil, 0)
}

func (f *fakePublishedPostRepo) UpdateStats(ctx context.Context, id int64, stats *transfer.PostStats) error {
	return nil
}

type fakeLinkedIn struct {
	mu          sync.Mutex
	uploadErr   map[int]error // call index -> error
	uploadCalls int
	postErr     error
	posted      []postedCall
}

type postedCall struct {
	content string
	assets  []string
}

func (f *fakeLinkedIn) AuthURL(state string) string { return "" }

func (f *fakeLinkedIn) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return nil, nil
}

func (f *fakeLinkedIn) UserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	return nil, nil
}

func (f *fakeLinkedIn) UploadImage(ctx context.Context, accessToken, linkedinID string, data []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.uploadCalls
	f.uploadCalls++
	if err := f.uploadErr[call]; err != nil {
		return "", err
	}
	return "urn:li:digitalmediaAsset:test", nil
}

func (f *fakeLinkedIn) CreatePost(ctx context.Context, accessToken, linkedinID, content string, assetURNs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, postedCall{content: content, assets: assetURNs})
	return "urn:li:share:123", nil
}

func (f *fakeLinkedIn) FetchPostStats(ctx context.Context, accessToken, postURN string) (*transfer.PostStats, error) {
	return nil, nil
}

func encryptedTestToken(t *testing.T) string {
	t.Helper()
	token, err := utils.Encrypt([]byte("access-token"), testSecretKey)
	require.NoError(t, err)
	return token
}

func connectedAccount(t *testing.T) *models.LinkedInAccount {
	t.Helper()
	return &models.LinkedInAccount{
		ID:          1,
		LinkedInID:  "member123",
		Name:        "Test Member",
		AccessToken: encryptedTestToken(t),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func pendingPost(id int64, due time.Time) *models.ScheduledPost {
	return &models.ScheduledPost{
		ID:          id,
		Content:     "hello world",
		ScheduledAt: due,
		Status:      models.PostStatusPending,
	}
}

func TestRunPublishesDuePost(t *testing.T) {
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, time.Now().Add(-time.Minute)),
	}}
	pp := &fakePublishedPostRepo{}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, pp, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusPublished, sp.posts[0].Status)
	require.NotNil(t, sp.posts[0].PublishedAt)
	require.Len(t, pp.records, 1)
	assert.Equal(t, "urn:li:share:123", pp.records[0].LinkedInPostID)
	assert.False(t, pp.records[0].HasImages)
}

func TestRunLeavesFuturePostAlone(t *testing.T) {
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, time.Now().Add(time.Hour)),
	}}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, &fakePublishedPostRepo{}, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusPending, sp.posts[0].Status)
	assert.Empty(t, li.posted)
}

func TestRunNeverClaimsCancelledPost(t *testing.T) {
	post := pendingPost(1, time.Now().Add(-time.Minute))
	post.Status = models.PostStatusCancelled
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{post}}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, &fakePublishedPostRepo{}, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusCancelled, post.Status)
	assert.Empty(t, li.posted)
}

func TestRunFailsWithoutAccount(t *testing.T) {
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, time.Now().Add(-time.Minute)),
	}}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{}, &fakePublishedPostRepo{}, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusFailed, sp.posts[0].Status)
	assert.Equal(t, service.ErrNotConnected.Error(), sp.posts[0].ErrorMessage)
	assert.Empty(t, li.posted)
}

func TestRunFailsOnExpiredToken(t *testing.T) {
	account := connectedAccount(t)
	account.ExpiresAt = time.Now().Add(-time.Minute)
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, time.Now().Add(-time.Minute)),
	}}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{account: account}, &fakePublishedPostRepo{}, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusFailed, sp.posts[0].Status)
	assert.Equal(t, service.ErrTokenExpired.Error(), sp.posts[0].ErrorMessage)
	// The platform must never be called with a stale credential.
	assert.Empty(t, li.posted)
	assert.Zero(t, li.uploadCalls)
}

func TestRunStoresPlatformRejectionMessage(t *testing.T) {
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, time.Now().Add(-time.Minute)),
	}}
	li := &fakeLinkedIn{postErr: &service.PublishError{Status: 422, Message: "duplicate"}}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, &fakePublishedPostRepo{}, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusFailed, sp.posts[0].Status)
	assert.Equal(t, "duplicate", sp.posts[0].ErrorMessage)
}

func TestRunPublishesWithPartialUploadFailure(t *testing.T) {
	post := pendingPost(1, time.Now().Add(-time.Minute))
	img := base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))
	post.Images = []models.PostImage{
		{Data: img, MimeType: "image/png"},
		{Data: img, MimeType: "image/jpeg"},
	}
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{post}}
	pp := &fakePublishedPostRepo{}
	li := &fakeLinkedIn{uploadErr: map[int]error{
		0: &service.UploadError{Status: 500, Body: "boom"},
	}}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, pp, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, models.PostStatusPublished, post.Status)
	require.Len(t, li.posted, 1)
	assert.Len(t, li.posted[0].assets, 1)
	require.Len(t, pp.records, 1)
	assert.True(t, pp.records[0].HasImages)
}

func TestRunDrainsAllDuePosts(t *testing.T) {
	due := time.Now().Add(-time.Minute)
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, due.Add(-2*time.Second)),
		pendingPost(2, due.Add(-time.Second)),
		pendingPost(3, due),
	}}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, &fakePublishedPostRepo{}, li, testSecretKey)

	require.NoError(t, j.Run(context.Background()))

	for _, p := range sp.posts {
		assert.Equal(t, models.PostStatusPublished, p.Status)
	}
	assert.Len(t, li.posted, 3)
}

func TestConcurrentRunsPublishExactlyOnce(t *testing.T) {
	due := time.Now().Add(-time.Minute)
	sp := &fakeScheduledPostRepo{posts: []*models.ScheduledPost{
		pendingPost(1, due),
		pendingPost(2, due),
		pendingPost(3, due),
		pendingPost(4, due),
	}}
	li := &fakeLinkedIn{}
	j := NewPublishJob(sp, &fakeAccountRepo{account: connectedAccount(t)}, &fakePublishedPostRepo{}, li, testSecretKey)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, j.Run(context.Background()))
		}()
	}
	wg.Wait()

	// Every row terminal, every row posted exactly once.
	for _, p := range sp.posts {
		assert.Equal(t, models.PostStatusPublished, p.Status)
	}
	assert.Len(t, li.posted, len(sp.posts))
}
