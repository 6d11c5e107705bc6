package client

import "github.com/devilmonastery/novel/pkg/novelapi"

// Model aliases so front ends only import this package
type (
	User                 = novelapi.User
	Role                 = novelapi.Role
	Story                = novelapi.Story
	StoryDetail          = novelapi.StoryDetail
	StoryQuery           = novelapi.StoryQuery
	Genre                = novelapi.Genre
	Chapter              = novelapi.Chapter
	LatestChapter        = novelapi.LatestChapter
	Favorite             = novelapi.Favorite
	FavoriteStatus       = novelapi.FavoriteStatus
	ReadingHistory       = novelapi.ReadingHistory
	UpdateHistoryRequest = novelapi.UpdateHistoryRequest
	Rating               = novelapi.Rating
	StoryRating          = novelapi.StoryRating
	RateStoryRequest     = novelapi.RateStoryRequest
	Comment              = novelapi.Comment
	CreateCommentRequest = novelapi.CreateCommentRequest
	Recommendation       = novelapi.Recommendation
	APIError             = novelapi.APIError
	DateTime             = novelapi.DateTime

	StoryPage          = novelapi.Page[novelapi.Story]
	StoryDetailPage    = novelapi.Page[novelapi.StoryDetail]
	FavoritePage       = novelapi.Page[novelapi.Favorite]
	ReadingHistoryPage = novelapi.Page[novelapi.ReadingHistory]
	CommentPage        = novelapi.Page[novelapi.Comment]
)

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool { return novelapi.IsUnauthorized(err) }

// IsForbidden reports whether err is a 403 from the API
func IsForbidden(err error) bool { return novelapi.IsForbidden(err) }

// IsSessionRejected reports whether the API refused the token the request sent
func IsSessionRejected(err error) bool { return novelapi.IsSessionRejected(err) }

// IsLoginRequired reports whether the call needs a (fresh) login
func IsLoginRequired(err error) bool { return novelapi.IsLoginRequired(err) }

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool { return novelapi.IsNotFound(err) }
