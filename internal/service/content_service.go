package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"buzztub/internal/apperr"
	"buzztub/internal/media/sniffer"
	"buzztub/internal/models"
	"buzztub/internal/repository"
	"buzztub/internal/storage"
)

const leaderboardSize = 10

// ContentService covers the member-facing video features: uploads, the
// video page, comments, likes, follows and the leaderboard.
type ContentService struct {
	users    UserStore
	videos   VideoStore
	comments CommentStore
	follows  FollowStore
	files    FileStore
	category storage.Category
	log      zerolog.Logger
}

func NewContentService(
	users UserStore,
	videos VideoStore,
	comments CommentStore,
	follows FollowStore,
	files FileStore,
	videoExtensions []string,
	log zerolog.Logger,
) *ContentService {
	return &ContentService{
		users:    users,
		videos:   videos,
		comments: comments,
		follows:  follows,
		files:    files,
		category: storage.Category{Prefix: "videos", Kind: sniffer.KindVideo, Extensions: videoExtensions},
		log:      log,
	}
}

type UploadInput struct {
	Title    string
	Filename string
	Size     int64
	Body     io.Reader
}

func (s *ContentService) Upload(ctx context.Context, session models.Session, input UploadInput) (models.Video, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Video{}, apperr.Validation("A title is required.")
	}

	key, err := s.files.Save(ctx, s.category, storage.Upload{
		Filename: input.Filename,
		Size:     input.Size,
		Body:     input.Body,
	})
	if err != nil {
		return models.Video{}, uploadError(err)
	}

	video, err := s.videos.Create(ctx, models.Video{
		Title:       title,
		Uploader:    session.Username,
		StoragePath: key,
	})
	if err != nil {
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("key", key).Msg("remove orphaned upload failed")
		}
		return models.Video{}, apperr.Internal(err, "Upload failed. Please try again.")
	}

	s.log.Info().Int64("video_id", video.ID).Str("uploader", video.Uploader).Msg("video uploaded")
	return video, nil
}

// uploadError turns storage rejections into user-facing validation errors;
// anything else is a storage fault.
func uploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrMissingFile):
		return apperr.Validation("Please choose a file to upload.")
	case errors.Is(err, storage.ErrBadExtension):
		return apperr.Validation("That file type is not allowed.")
	case errors.Is(err, storage.ErrContentMismatch):
		return apperr.Validation("The file content does not match its type.")
	case errors.Is(err, storage.ErrFileTooLarge):
		return apperr.Validation("The file is too large.")
	}
	return apperr.Internal(err, "Upload failed. Please try again.")
}

func (s *ContentService) Home(ctx context.Context) ([]models.Video, error) {
	return s.videos.List(ctx)
}

type VideoPage struct {
	Video     models.Video     `json:"video"`
	Comments  []models.Comment `json:"comments"`
	Liked     bool             `json:"liked"`
	Following bool             `json:"following"`
}

func (s *ContentService) VideoPage(ctx context.Context, session models.Session, id int64) (VideoPage, error) {
	video, err := s.getVideo(ctx, id)
	if err != nil {
		return VideoPage{}, err
	}

	comments, err := s.comments.ListByVideo(ctx, id)
	if err != nil {
		return VideoPage{}, fmt.Errorf("list comments: %w", err)
	}
	liked, err := s.videos.IsLiked(ctx, id, session.Username)
	if err != nil {
		return VideoPage{}, fmt.Errorf("like state: %w", err)
	}
	following, err := s.follows.IsFollowing(ctx, session.Username, video.Uploader)
	if err != nil {
		return VideoPage{}, fmt.Errorf("follow state: %w", err)
	}

	return VideoPage{Video: video, Comments: comments, Liked: liked, Following: following}, nil
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// ToggleLike likes the video, or unlikes it when already liked. Uploaders
// cannot like their own videos.
func (s *ContentService) ToggleLike(ctx context.Context, session models.Session, videoID int64) (LikeResult, error) {
	video, err := s.getVideo(ctx, videoID)
	if err != nil {
		return LikeResult{}, err
	}
	if video.Uploader == session.Username {
		return LikeResult{Likes: video.Likes}, apperr.Validation("You cannot like your own video.")
	}

	liked, likes, err := s.videos.ToggleLike(ctx, videoID, session.Username)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return LikeResult{}, apperr.NotFound("Video")
		}
		return LikeResult{}, fmt.Errorf("toggle like: %w", err)
	}
	return LikeResult{Liked: liked, Likes: likes}, nil
}

func (s *ContentService) Comment(ctx context.Context, session models.Session, videoID int64, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, apperr.Validation("Comment cannot be empty.")
	}
	if _, err := s.getVideo(ctx, videoID); err != nil {
		return models.Comment{}, err
	}

	comment, err := s.comments.Create(ctx, models.Comment{VideoID: videoID, Author: session.Username, Text: text})
	if err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ToggleFollow subscribes the session user to followee, or unsubscribes when
// already subscribed. sourceVideoID optionally names the video page the
// subscription was made from.
func (s *ContentService) ToggleFollow(ctx context.Context, session models.Session, followee string, sourceVideoID *int64) (bool, error) {
	followee = strings.TrimSpace(followee)
	if followee == session.Username {
		return false, apperr.Validation("You cannot follow yourself.")
	}
	if _, err := s.users.FindByUsername(ctx, followee); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, apperr.NotFound("User")
		}
		return false, err
	}
	if sourceVideoID != nil {
		if _, err := s.getVideo(ctx, *sourceVideoID); err != nil {
			return false, err
		}
	}

	following, err := s.follows.Toggle(ctx, models.Follow{
		Follower:      session.Username,
		Followee:      followee,
		SourceVideoID: sourceVideoID,
	})
	if err != nil {
		return false, fmt.Errorf("toggle follow: %w", err)
	}
	return following, nil
}

func (s *ContentService) Leaderboard(ctx context.Context) ([]models.Video, error) {
	return s.videos.Top(ctx, leaderboardSize)
}

type Profile struct {
	Username      string          `json:"username"`
	Role          models.Role     `json:"role"`
	Videos        []models.Video  `json:"videos"`
	Subscriptions []models.Follow `json:"subscriptions,omitempty"`
	Followers     int             `json:"followers"`
}

// Profile loads a member's public page. Subscriptions are only included when
// the viewer is looking at their own profile.
func (s *ContentService) Profile(ctx context.Context, viewer models.Session, username string) (Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Profile{}, apperr.NotFound("User")
		}
		return Profile{}, err
	}

	videos, err := s.videos.ListByUploader(ctx, user.Username)
	if err != nil {
		return Profile{}, fmt.Errorf("list videos: %w", err)
	}
	followers, err := s.follows.CountFollowers(ctx, user.Username)
	if err != nil {
		return Profile{}, fmt.Errorf("count followers: %w", err)
	}

	profile := Profile{Username: user.Username, Role: user.Role, Videos: videos, Followers: followers}
	if viewer.Username == user.Username {
		subs, err := s.follows.ListByFollower(ctx, user.Username)
		if err != nil {
			return Profile{}, fmt.Errorf("list subscriptions: %w", err)
		}
		profile.Subscriptions = subs
	}
	return profile, nil
}

func (s *ContentService) getVideo(ctx context.Context, id int64) (models.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return models.Video{}, apperr.NotFound("Video")
		}
		return models.Video{}, err
	}
	return video, nil
}
