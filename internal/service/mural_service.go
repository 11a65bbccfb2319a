package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"
	"corpintranet/portal/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	muralKeyPrefix   = "mural"
	maxPostLength    = 4000
	maxCommentLength = 1000
	defaultMuralPage = 20
	maxMuralPage     = 100
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrImageKey     = errors.New("image key was not issued to this user")
)

// PostView is a post as rendered for one viewer.
type PostView struct {
	domain.Post
	ImageURL  string `json:"imageUrl,omitempty"`
	LikeCount int    `json:"likeCount"`
	LikedByMe bool   `json:"likedByMe"`
}

// ImageUpload tells the client where to PUT an image and which key to send back.
type ImageUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MuralService interface {
	RequestImageUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*ImageUpload, error)
	CreatePost(ctx context.Context, authorID primitive.ObjectID, content, imageKey string) (*PostView, error)
	ListPosts(ctx context.Context, viewerID primitive.ObjectID, limit int, before *time.Time) ([]PostView, error)
	SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) (*PostView, error)
	AddComment(ctx context.Context, postID, authorID primitive.ObjectID, text string) (*domain.Comment, error)
	DeletePost(ctx context.Context, postID, requesterID primitive.ObjectID, requesterRole domain.Role) error
}

type muralService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	storage  storage.FileStorage
	points   PointsService
	logger   *zap.Logger
}

// NewMuralService builds the bulletin board. fileStorage may be nil, which disables images.
func NewMuralService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
	points PointsService,
	logger *zap.Logger,
) MuralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &muralService{
		postRepo: postRepo,
		userRepo: userRepo,
		storage:  fileStorage,
		points:   points,
		logger:   logger,
	}
}

func (s *muralService) RequestImageUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*ImageUpload, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: image uploads are disabled", ErrInvalidInput)
	}
	key, err := storage.NewImageKey(muralKeyPrefix, userID.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	url, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &ImageUpload{
		UploadURL: url,
		ObjectKey: key,
		ExpiresAt: time.Now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

func (s *muralService) CreatePost(ctx context.Context, authorID primitive.ObjectID, content, imageKey string) (*PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" && imageKey == "" {
		return nil, fmt.Errorf("%w: post needs content or an image", ErrInvalidInput)
	}
	if len(content) > maxPostLength {
		return nil, fmt.Errorf("%w: post longer than %d characters", ErrInvalidInput, maxPostLength)
	}
	if imageKey != "" && !storage.OwnsKey(muralKeyPrefix, authorID.Hex(), imageKey) {
		return nil, ErrImageKey
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	post := &domain.Post{
		AuthorID:   authorID,
		AuthorName: author.Name,
		Content:    content,
		ImageKey:   imageKey,
		Likes:      []primitive.ObjectID{},
		Comments:   []domain.Comment{},
	}
	id, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.ID = id

	s.award(ctx, authorID, domain.PointsForPost, id.Hex())
	view := s.view(ctx, post, authorID)
	return &view, nil
}

func (s *muralService) ListPosts(ctx context.Context, viewerID primitive.ObjectID, limit int, before *time.Time) ([]PostView, error) {
	if limit <= 0 {
		limit = defaultMuralPage
	}
	if limit > maxMuralPage {
		limit = maxMuralPage
	}
	posts, err := s.postRepo.List(ctx, limit, before)
	if err != nil {
		return nil, err
	}
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, s.view(ctx, &posts[i], viewerID))
	}
	return views, nil
}

// SetLike likes or unlikes a post. The author earns points the first time a
// colleague's like is recorded; unlikes never deduct.
func (s *muralService) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) (*PostView, error) {
	changed, err := s.postRepo.SetLike(ctx, postID, userID, liked)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if changed && liked && post.AuthorID != userID {
		s.award(ctx, post.AuthorID, domain.PointsForLike, postID.Hex())
	}
	view := s.view(ctx, post, userID)
	return &view, nil
}

func (s *muralService) AddComment(ctx context.Context, postID, authorID primitive.ObjectID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrInvalidInput)
	}
	if len(text) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment longer than %d characters", ErrInvalidInput, maxCommentLength)
	}
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := domain.Comment{
		ID:         primitive.NewObjectID(),
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.postRepo.AddComment(ctx, postID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	s.award(ctx, authorID, domain.PointsForComment, postID.Hex())
	return &comment, nil
}

// DeletePost removes a post and its image. Only the author or an admin may do it.
func (s *muralService) DeletePost(ctx context.Context, postID, requesterID primitive.ObjectID, requesterRole domain.Role) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.AuthorID != requesterID && requesterRole != domain.RoleAdmin {
		return ErrForbidden
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.ImageKey != "" && s.storage != nil {
		// The post is gone either way; an orphaned object is only logged.
		if err := s.storage.DeleteObject(ctx, post.ImageKey); err != nil {
			s.logger.Warn("mural image not deleted", zap.String("key", post.ImageKey), zap.Error(err))
		}
	}
	s.logger.Info("post deleted", zap.String("post", postID.Hex()), zap.String("by", requesterID.Hex()))
	return nil
}

func (s *muralService) view(ctx context.Context, post *domain.Post, viewerID primitive.ObjectID) PostView {
	v := PostView{
		Post:      *post,
		LikeCount: len(post.Likes),
		LikedByMe: post.LikedBy(viewerID),
	}
	if post.ImageKey != "" && s.storage != nil {
		url, err := s.storage.GeneratePresignedDownloadURL(ctx, post.ImageKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			s.logger.Warn("presign download failed", zap.String("key", post.ImageKey), zap.Error(err))
		} else {
			v.ImageURL = url
		}
	}
	return v
}

func (s *muralService) award(ctx context.Context, userID primitive.ObjectID, reason domain.PointsReason, note string) {
	if s.points == nil {
		return
	}
	if _, err := s.points.Award(ctx, userID, reason, note); err != nil {
		s.logger.Warn("points not awarded", zap.String("user", userID.Hex()), zap.String("reason", string(reason)), zap.Error(err))
	}
}
