package service

import (
	"context"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"buzztub/internal/config"
	"buzztub/internal/models"
	"buzztub/internal/repository"
	"buzztub/internal/security"
	"buzztub/internal/storage"
)

var fastParams = security.Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}

func fastHash(password string) ([]byte, error) {
	return security.HashPasswordWithParams(password, fastParams)
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:   "test-secret",
			SessionTTL:  time.Hour,
			TrialWindow: 10 * time.Minute,
		},
	}
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == user.Username || (u.Email != nil && user.Email != nil && *u.Email == *user.Email) {
			return models.User{}, repository.ErrDuplicateUser
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id int64, role models.Role) error {
	return f.update(id, func(u *models.User) { u.Role = role })
}

func (f *fakeUsers) UpdateEmail(_ context.Context, id int64, email *string) error {
	f.mu.Lock()
	for _, u := range f.byID {
		if u.ID != id && email != nil && u.Email != nil && *u.Email == *email {
			f.mu.Unlock()
			return repository.ErrDuplicateUser
		}
	}
	f.mu.Unlock()
	return f.update(id, func(u *models.User) { u.Email = email })
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash []byte) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUsers) update(id int64, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&u)
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return "", repository.ErrUserNotFound
	}
	delete(f.byID, id)
	return u.Username, nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]models.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]models.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, session models.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[session.ID] = session
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, session.ID)
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, username string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, s := range f.byID {
		if s.Username == username {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeVideos struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.Video
	likes  map[int64]map[string]bool
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{byID: map[int64]models.Video{}, likes: map[int64]map[string]bool{}}
}

func (f *fakeVideos) Create(_ context.Context, video models.Video) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	video.ID = f.nextID
	f.byID[video.ID] = video
	return video, nil
}

func (f *fakeVideos) GetByID(_ context.Context, id int64) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return models.Video{}, repository.ErrVideoNotFound
	}
	return v, nil
}

func (f *fakeVideos) List(_ context.Context) ([]models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Video, 0, len(f.byID))
	for _, v := range f.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeVideos) ListByUploader(ctx context.Context, uploader string) ([]models.Video, error) {
	all, _ := f.List(ctx)
	out := all[:0]
	for _, v := range all {
		if v.Uploader == uploader {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVideos) Top(ctx context.Context, limit int) ([]models.Video, error) {
	all, _ := f.List(ctx)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Likes != all[j].Likes {
			return all[i].Likes > all[j].Likes
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeVideos) ToggleLike(_ context.Context, videoID int64, username string) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[videoID]
	if !ok {
		return false, 0, repository.ErrVideoNotFound
	}
	if f.likes[videoID] == nil {
		f.likes[videoID] = map[string]bool{}
	}
	liked := !f.likes[videoID][username]
	if liked {
		f.likes[videoID][username] = true
		v.Likes++
	} else {
		delete(f.likes[videoID], username)
		v.Likes--
	}
	f.byID[videoID] = v
	return liked, v.Likes, nil
}

func (f *fakeVideos) IsLiked(_ context.Context, videoID int64, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[videoID][username], nil
}

func (f *fakeVideos) Delete(_ context.Context, id int64) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return models.Video{}, repository.ErrVideoNotFound
	}
	delete(f.byID, id)
	delete(f.likes, id)
	return v, nil
}

type fakeComments struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Comment
}

func (f *fakeComments) Create(_ context.Context, c models.Comment) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	f.items = append(f.items, c)
	return c, nil
}

func (f *fakeComments) ListByVideo(_ context.Context, videoID int64) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.items {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) List(_ context.Context) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.items {
		if c.ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return repository.ErrCommentNotFound
}

type fakeFollows struct {
	mu    sync.Mutex
	items []models.Follow
}

func (f *fakeFollows) Toggle(_ context.Context, follow models.Follow) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.items {
		if existing.Follower == follow.Follower && existing.Followee == follow.Followee {
			f.items = slices.Delete(f.items, i, i+1)
			return false, nil
		}
	}
	f.items = append(f.items, follow)
	return true, nil
}

func (f *fakeFollows) IsFollowing(_ context.Context, follower, followee string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Follower == follower && existing.Followee == followee {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFollows) ListByFollower(_ context.Context, follower string) ([]models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Follow
	for _, existing := range f.items {
		if existing.Follower == follower {
			out = append(out, existing)
		}
	}
	return out, nil
}

func (f *fakeFollows) CountFollowers(_ context.Context, followee string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, existing := range f.items {
		if existing.Followee == followee {
			n++
		}
	}
	return n, nil
}

type fakeChat struct {
	mu     sync.Mutex
	nextID int64
	items  []models.ChatMessage
}

func (f *fakeChat) Create(_ context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = f.nextID
	f.items = append(f.items, msg)
	return msg, nil
}

func (f *fakeChat) Latest(_ context.Context, limit int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.items)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeChat) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.items {
		if m.ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return repository.ErrMessageNotFound
}

type fakeReports struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Report
}

func (f *fakeReports) Create(_ context.Context, r models.Report) (models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	r.Status = models.ReportStatusPending
	f.items = append(f.items, r)
	return r, nil
}

func (f *fakeReports) List(_ context.Context) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakeReports) MarkReviewed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.items {
		if r.ID != id {
			continue
		}
		if r.Status == models.ReportStatusReviewed {
			return repository.ErrReportAlreadyReviewed
		}
		f.items[i].Status = models.ReportStatusReviewed
		return nil
	}
	return repository.ErrReportNotFound
}

type fakeRequests struct {
	mu     sync.Mutex
	nextID int64
	items  []models.PremiumRequest
}

func (f *fakeRequests) Create(_ context.Context, username string) (models.PremiumRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.Username == username && r.Status == models.PremiumRequestPending {
			return models.PremiumRequest{}, repository.ErrPremiumRequestPending
		}
	}
	f.nextID++
	r := models.PremiumRequest{ID: f.nextID, Username: username, Status: models.PremiumRequestPending}
	f.items = append(f.items, r)
	return r, nil
}

func (f *fakeRequests) LatestForUser(_ context.Context, username string) (models.PremiumRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].Username == username {
			return f.items[i], nil
		}
	}
	return models.PremiumRequest{}, repository.ErrPremiumRequestNotFound
}

func (f *fakeRequests) ListPending(_ context.Context) ([]models.PremiumRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PremiumRequest
	for _, r := range f.items {
		if r.Status == models.PremiumRequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequests) Resolve(_ context.Context, username string, status models.PremiumRequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.items {
		if r.Username == username && r.Status == models.PremiumRequestPending {
			f.items[i].Status = status
		}
	}
	return nil
}

func (f *fakeRequests) Reject(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.items {
		if r.ID == id && r.Status == models.PremiumRequestPending {
			f.items[i].Status = models.PremiumRequestRejected
			return nil
		}
	}
	return repository.ErrPremiumRequestNotFound
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []repository.AuditEntry
}

func (f *fakeAudit) Append(_ context.Context, entry repository.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) Recent(_ context.Context, count int64) ([]repository.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.entries)
	slices.Reverse(out)
	if int64(len(out)) > count {
		out = out[:count]
	}
	return out, nil
}

type fakeFiles struct {
	mu      sync.Mutex
	saved   map[string]string
	removed []string
	err     error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{saved: map[string]string{}}
}

func (f *fakeFiles) Save(_ context.Context, cat storage.Category, up storage.Upload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, err := io.ReadAll(up.Body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := cat.Prefix + "/" + strings.ToLower(up.Filename)
	f.saved[key] = string(body)
	return key, nil
}

func (f *fakeFiles) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, key)
	f.removed = append(f.removed, key)
	return nil
}

// world wires every service over one shared set of fakes.
type world struct {
	users    *fakeUsers
	sessions *fakeSessions
	videos   *fakeVideos
	comments *fakeComments
	follows  *fakeFollows
	chat     *fakeChat
	reports  *fakeReports
	requests *fakeRequests
	audit    *fakeAudit
	files    *fakeFiles

	auth       *AuthService
	content    *ContentService
	community  *CommunityService
	moderation *ModerationService
	chatSvc    *ChatService
	clock      time.Time
}

func newWorld() *world {
	w := &world{
		users:    newFakeUsers(),
		sessions: newFakeSessions(),
		videos:   newFakeVideos(),
		comments: &fakeComments{},
		follows:  &fakeFollows{},
		chat:     &fakeChat{},
		reports:  &fakeReports{},
		requests: &fakeRequests{},
		audit:    &fakeAudit{},
		files:    newFakeFiles(),
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	log := zerolog.Nop()

	w.auth = NewAuthService(w.users, w.sessions, testConfig(), log)
	w.auth.hash = fastHash
	w.auth.now = func() time.Time { return w.clock }

	w.content = NewContentService(w.users, w.videos, w.comments, w.follows, w.files, []string{"mp4"}, log)
	w.community = NewCommunityService(w.users, w.reports, w.requests)
	w.chatSvc = NewChatService(w.chat, w.files, []string{"png"}, log)
	w.moderation = NewModerationService(ModerationDeps{
		Users:    w.users,
		Sessions: w.sessions,
		Videos:   w.videos,
		Comments: w.comments,
		Messages: w.chat,
		Reports:  w.reports,
		Requests: w.requests,
		Files:    w.files,
		Audit:    w.audit,
	}, log)
	return w
}
