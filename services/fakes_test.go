package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"blog-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repositories shared by the service tests. They return the same
// gorm sentinel errors as the postgres implementations.

type fakeUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Mirrors the repository's editable column list.
	stored.Username = user.Username
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Bio = user.Bio
	stored.Avatar = user.Avatar
	stored.Roles = user.Roles
	stored.IsActive = user.IsActive
	stored.UpdatedAt = time.Now()
	user.UpdatedAt = stored.UpdatedAt
	r.users[user.ID] = stored
	return nil
}

func (r *fakeUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "refresh_token":
			u.RefreshToken = value.(*string)
		case "last_login":
			t := value.(time.Time)
			u.LastLogin = &t
		case "avatar":
			u.Avatar = value.(string)
		}
	}
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

type fakeTagRepo struct {
	mu   sync.RWMutex
	tags map[string]models.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: map[string]models.Tag{}}
}

func (r *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tags {
		if t.Name == tag.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	tag.ID = uuid.NewString()
	tag.CreatedAt = time.Now()
	r.tags[tag.ID] = *tag
	return nil
}

func (r *fakeTagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tags {
		if t.Name == name {
			found := t
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTagRepo) GetByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := []models.Tag{}
	for _, t := range r.tags {
		for _, name := range names {
			if t.Name == name {
				tags = append(tags, t)
			}
		}
	}
	return tags, nil
}

func (r *fakeTagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *fakeTagRepo) GetAll(ctx context.Context) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]models.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].TrendingScore > tags[j].TrendingScore })
	return tags, nil
}

func (r *fakeTagRepo) BulkUpdate(ctx context.Context, tags []models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tags {
		r.tags[t.ID] = t
	}
	return nil
}

type fakePostRepo struct {
	mu    sync.RWMutex
	posts map[string]models.Post
	order []string
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]models.Post{}}
}

func clonePost(p models.Post) *models.Post {
	p.Tags = append([]models.Tag(nil), p.Tags...)
	return &p
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.posts {
		if p.Slug == post.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = *clonePost(*post)
	r.order = append(r.order, post.ID)
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return clonePost(p), nil
}

func (r *fakePostRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (r *fakePostRepo) GetList(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Post{}
	// Newest first
	for i := len(r.order) - 1; i >= 0; i-- {
		p, ok := r.posts[r.order[i]]
		if !ok {
			continue
		}
		if !p.IsPublished() && (filter.ViewerID == "" || p.AuthorID != filter.ViewerID) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(p, filter.Tags) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Content), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *clonePost(p))
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func hasAnyTag(p models.Post, names []string) bool {
	for _, t := range p.Tags {
		for _, name := range names {
			if t.Name == name {
				return true
			}
		}
	}
	return false
}

func (r *fakePostRepo) GetRelated(ctx context.Context, post *models.Post, limit int) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		post   models.Post
		shared int
	}
	candidates := []scored{}
	for _, id := range r.order {
		p, ok := r.posts[id]
		if !ok || p.ID == post.ID || !p.IsPublished() {
			continue
		}
		shared := 0
		for _, t := range p.Tags {
			for _, own := range post.Tags {
				if t.ID == own.ID {
					shared++
				}
			}
		}
		if shared > 0 {
			candidates = append(candidates, scored{post: *clonePost(p), shared: shared})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].shared > candidates[j].shared })

	related := []models.Post{}
	for i := 0; i < len(candidates) && i < limit; i++ {
		related = append(related, candidates[i].post)
	}
	return related, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *models.Post, replaceTags bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *clonePost(*post)
	if !replaceTags {
		updated.Tags = stored.Tags
	}
	updated.AuthorID = stored.AuthorID
	updated.LikesCount = stored.LikesCount
	updated.CommentsCount = stored.CommentsCount
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	r.posts[post.ID] = updated
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) IncrementColumn(ctx context.Context, id, column string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	switch column {
	case "likes_count":
		p.LikesCount += delta
	case "comments_count":
		p.CommentsCount += delta
	}
	r.posts[id] = p
	return nil
}

func (r *fakePostRepo) CountPublishedByTag(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int{}
	for _, p := range r.posts {
		if !p.IsPublished() {
			continue
		}
		for _, t := range p.Tags {
			counts[t.ID]++
		}
	}
	return counts, nil
}

type fakeCommentRepo struct {
	mu       sync.RWMutex
	comments map[string]models.Comment
	order    []string
	clock    time.Time
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string]models.Comment{}, clock: time.Now()}
}

func cloneComment(c models.Comment) *models.Comment {
	c.Replies = nil
	c.Mentions = append([]models.UserSummary(nil), c.Mentions...)
	return &c
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strictly increasing timestamps keep reply order deterministic.
	r.clock = r.clock.Add(time.Millisecond)
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.clock
	comment.UpdatedAt = r.clock
	r.comments[comment.ID] = *cloneComment(*comment)
	r.order = append(r.order, comment.ID)
	return nil
}

func (r *fakeCommentRepo) childrenOf(parentID string) []*models.Comment {
	children := []*models.Comment{}
	for _, id := range r.order {
		c, ok := r.comments[id]
		if ok && c.ParentCommentID != nil && *c.ParentCommentID == parentID {
			children = append(children, cloneComment(c))
		}
	}
	return children
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	comment := cloneComment(c)
	comment.Replies = r.childrenOf(id)
	return comment, nil
}

func (r *fakeCommentRepo) GetList(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Comment{}
	for i := len(r.order) - 1; i >= 0; i-- {
		c, ok := r.comments[r.order[i]]
		if !ok || c.Status != filter.Status {
			continue
		}
		if filter.PostID != "" && c.PostID != filter.PostID {
			continue
		}
		if filter.AuthorID != "" && c.AuthorID != filter.AuthorID {
			continue
		}
		if filter.ParentCommentID == nil && c.ParentCommentID != nil {
			continue
		}
		if filter.ParentCommentID != nil && (c.ParentCommentID == nil || *c.ParentCommentID != *filter.ParentCommentID) {
			continue
		}
		comment := cloneComment(c)
		for _, reply := range r.childrenOf(c.ID) {
			if reply.Status == models.CommentStatusApproved {
				comment.Replies = append(comment.Replies, reply)
			}
		}
		matched = append(matched, *comment)
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeCommentRepo) GetReplies(ctx context.Context, parentIDs []string) ([]*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	replies := []*models.Comment{}
	for _, parentID := range parentIDs {
		replies = append(replies, r.childrenOf(parentID)...)
	}
	sort.SliceStable(replies, func(i, j int) bool { return replies[i].CreatedAt.Before(replies[j].CreatedAt) })
	return replies, nil
}

func (r *fakeCommentRepo) GetChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	replies, err := r.GetReplies(ctx, parentIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(replies))
	for _, reply := range replies {
		ids = append(ids, reply.ID)
	}
	return ids, nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "content":
			c.Content = value.(string)
		case "is_edited":
			c.IsEdited = value.(bool)
		case "edited_at":
			t := value.(time.Time)
			c.EditedAt = &t
		case "status":
			c.Status = value.(models.CommentStatus)
		}
	}
	r.comments[id] = c
	return nil
}

func (r *fakeCommentRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.comments, id)
	}
	return nil
}

func (r *fakeCommentRepo) IncrementLikes(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.LikesCount += delta
	r.comments[id] = c
	return nil
}

func (r *fakeCommentRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.comments)
}

type fakeLikeRepo struct {
	mu    sync.RWMutex
	likes map[string]models.Like
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[string]models.Like{}}
}

func (r *fakeLikeRepo) Find(ctx context.Context, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.likes {
		if l.UserID == userID && l.TargetID == targetID && l.TargetType == targetType {
			found := l
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLikeRepo) Create(ctx context.Context, like *models.Like) error {
	if _, err := r.Find(ctx, like.UserID, like.TargetID, like.TargetType); err == nil {
		return gorm.ErrDuplicatedKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	like.ID = uuid.NewString()
	like.CreatedAt = time.Now()
	r.likes[like.ID] = *like
	return nil
}

func (r *fakeLikeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.likes, id)
	return nil
}

func (r *fakeLikeRepo) filter(match func(models.Like) bool) []models.Like {
	r.mu.RLock()
	defer r.mu.RUnlock()

	likes := []models.Like{}
	for _, l := range r.likes {
		if match(l) {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })
	return likes
}

func (r *fakeLikeRepo) GetByUser(ctx context.Context, userID string, targetType models.LikeTargetType) ([]models.Like, error) {
	return r.filter(func(l models.Like) bool {
		return l.UserID == userID && (targetType == "" || l.TargetType == targetType)
	}), nil
}

func (r *fakeLikeRepo) GetByTarget(ctx context.Context, targetID string, targetType models.LikeTargetType) ([]models.Like, error) {
	return r.filter(func(l models.Like) bool {
		return l.TargetID == targetID && l.TargetType == targetType
	}), nil
}

func (r *fakeLikeRepo) Count(ctx context.Context, targetID string, targetType models.LikeTargetType) (int64, error) {
	likes, _ := r.GetByTarget(ctx, targetID, targetType)
	return int64(len(likes)), nil
}

func (r *fakeLikeRepo) GetLikedTargetIDs(ctx context.Context, userID string, targetIDs []string, targetType models.LikeTargetType) ([]string, error) {
	wanted := map[string]bool{}
	for _, id := range targetIDs {
		wanted[id] = true
	}

	ids := []string{}
	for _, l := range r.filter(func(l models.Like) bool {
		return l.UserID == userID && l.TargetType == targetType && wanted[l.TargetID]
	}) {
		ids = append(ids, l.TargetID)
	}
	return ids, nil
}

type fakeUploader struct {
	uploads []string
}

func (u *fakeUploader) UploadImage(ctx context.Context, file io.Reader, folder string) (*models.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	u.uploads = append(u.uploads, folder)
	id := folder + "/" + uuid.NewString()
	return &models.UploadResult{URL: "https://images.example.com/" + id, PublicID: id}, nil
}

// testEnv wires every service over the in-memory repositories.
type testEnv struct {
	users    *fakeUserRepo
	tags     *fakeTagRepo
	posts    *fakePostRepo
	comments *fakeCommentRepo
	likes    *fakeLikeRepo
	uploader *fakeUploader

	userService    UserService
	authService    AuthService
	tagService     TagService
	postService    PostService
	commentService CommentService
	likeService    LikeService
	searchService  SearchService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:    newFakeUserRepo(),
		tags:     newFakeTagRepo(),
		posts:    newFakePostRepo(),
		comments: newFakeCommentRepo(),
		likes:    newFakeLikeRepo(),
		uploader: &fakeUploader{},
	}

	env.userService = NewUserService(env.users, env.uploader)
	env.authService = NewAuthService(env.userService, testJWTConfig())
	env.tagService = NewTagService(env.tags, env.posts)
	env.postService = NewPostService(env.posts, env.tagService)
	env.commentService = NewCommentService(env.comments, env.postService, env.userService)
	env.likeService = NewLikeService(env.likes, env.postService, env.commentService)
	env.searchService = NewSearchService(env.posts)
	return env
}
