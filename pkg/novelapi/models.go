package novelapi

import (
	"bytes"
	"fmt"
	"time"
)

// DateTime is a timestamp as the backend serializes it: an ISO-8601 local
// date-time with no zone, e.g. "2025-12-13T10:00:00". Values are read as UTC.
type DateTime struct {
	time.Time
}

const localDateTimeLayout = "2006-01-02T15:04:05"

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// UnmarshalJSON accepts zone-less and RFC 3339 timestamps
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date-time %s", data)
	}
	s := string(data[1 : len(data)-1])
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date-time %q", s)
}

// MarshalJSON writes the zone-less form the backend expects
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.UTC().Format(localDateTimeLayout) + `"`), nil
}

// Page is a Spring Data page of results
type Page[T any] struct {
	Content          []T  `json:"content"`
	TotalElements    int  `json:"totalElements"`
	TotalPages       int  `json:"totalPages"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	NumberOfElements int  `json:"numberOfElements"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	Empty            bool `json:"empty"`
}

// HasNext reports whether another page follows this one
func (p Page[T]) HasNext() bool {
	return !p.Last && p.Number+1 < p.TotalPages
}

// User is the public view of an account
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   *DateTime `json:"createdAt,omitempty"`
	Active      bool      `json:"active"`
	Role        *Role     `json:"role,omitempty"`
}

// Role is the account's authorization role, e.g. USER or ADMIN
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   *DateTime `json:"createdAt,omitempty"`
}

// RoleName returns the role name, or "" when the backend sent none
func (u *User) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Genre is a story category
type Genre struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   *DateTime `json:"createdAt,omitempty"`
}

// Story is a novel with its raw and translated metadata
type Story struct {
	ID                    int64     `json:"id"`
	Title                 string    `json:"title"`
	RawTitle              string    `json:"rawTitle,omitempty"`
	TranslatedTitle       string    `json:"translatedTitle,omitempty"`
	AuthorName            string    `json:"authorName,omitempty"`
	RawAuthorName         string    `json:"rawAuthorName,omitempty"`
	TranslatedAuthorName  string    `json:"translatedAuthorName,omitempty"`
	Description           string    `json:"description,omitempty"`
	RawDescription        string    `json:"rawDescription,omitempty"`
	TranslatedDescription string    `json:"translatedDescription,omitempty"`
	CoverImageURL         string    `json:"coverImageUrl,omitempty"`
	SourceURL             string    `json:"sourceUrl,omitempty"`
	SourceSite            string    `json:"sourceSite,omitempty"`
	CreatedAt             *DateTime `json:"createdAt,omitempty"`
	UpdatedAt             *DateTime `json:"updatedAt,omitempty"`
	CreatedBy             *int64    `json:"createdBy,omitempty"`
	LastModifiedBy        *int64    `json:"lastModifiedBy,omitempty"`
	Status                string    `json:"status,omitempty"`
	Featured              bool      `json:"featured"`
	Genres                []Genre   `json:"genres,omitempty"`
}

// DisplayTitle prefers the translated title
func (s Story) DisplayTitle() string {
	return firstNonEmpty(s.TranslatedTitle, s.Title, s.RawTitle)
}

// DisplayAuthor prefers the translated author name
func (s Story) DisplayAuthor() string {
	return firstNonEmpty(s.TranslatedAuthorName, s.AuthorName, s.RawAuthorName)
}

// LatestChapterInfo summarizes the most recent chapter of a story
type LatestChapterInfo struct {
	ID              int64     `json:"id"`
	ChapterIndex    int       `json:"chapterIndex"`
	Title           string    `json:"title"`
	TranslatedTitle string    `json:"translatedTitle,omitempty"`
	UpdatedAt       *DateTime `json:"updatedAt,omitempty"`
}

// StoryDetail is a story with homepage metadata (views, ratings, counts)
type StoryDetail struct {
	ID                    int64              `json:"id"`
	Title                 string             `json:"title"`
	RawTitle              string             `json:"rawTitle,omitempty"`
	TranslatedTitle       string             `json:"translatedTitle,omitempty"`
	AuthorName            string             `json:"authorName,omitempty"`
	RawAuthorName         string             `json:"rawAuthorName,omitempty"`
	TranslatedAuthorName  string             `json:"translatedAuthorName,omitempty"`
	Description           string             `json:"description,omitempty"`
	RawDescription        string             `json:"rawDescription,omitempty"`
	TranslatedDescription string             `json:"translatedDescription,omitempty"`
	CoverImageURL         string             `json:"coverImageUrl,omitempty"`
	SourceURL             string             `json:"sourceUrl,omitempty"`
	SourceSite            string             `json:"sourceSite,omitempty"`
	CreatedAt             *DateTime          `json:"createdAt,omitempty"`
	UpdatedAt             *DateTime          `json:"updatedAt,omitempty"`
	ViewCount             int64              `json:"viewCount"`
	Featured              bool               `json:"featured"`
	TotalChapters         int                `json:"totalChapters"`
	AverageRating         float64            `json:"averageRating"`
	TotalRatings          int64              `json:"totalRatings"`
	TotalComments         int64              `json:"totalComments"`
	TotalFavorites        int64              `json:"totalFavorites"`
	Genres                []Genre            `json:"genres,omitempty"`
	LatestChapter         *LatestChapterInfo `json:"latestChapter,omitempty"`
}

// DisplayTitle prefers the translated title
func (s StoryDetail) DisplayTitle() string {
	return firstNonEmpty(s.TranslatedTitle, s.Title, s.RawTitle)
}

// DisplayAuthor prefers the translated author name
func (s StoryDetail) DisplayAuthor() string {
	return firstNonEmpty(s.TranslatedAuthorName, s.AuthorName, s.RawAuthorName)
}

// Chapter is one chapter of a story, raw and translated
type Chapter struct {
	ID                int64     `json:"id"`
	StoryID           int64     `json:"storyId"`
	ChapterIndex      int       `json:"chapterIndex"`
	Title             string    `json:"title"`
	RawContent        string    `json:"rawContent,omitempty"`
	CrawlStatus       string    `json:"crawlStatus,omitempty"`
	CrawlTime         *DateTime `json:"crawlTime,omitempty"`
	TranslatedContent string    `json:"translatedContent,omitempty"`
	TranslateStatus   string    `json:"translateStatus,omitempty"`
	TranslateTime     *DateTime `json:"translateTime,omitempty"`
	CreatedAt         *DateTime `json:"createdAt,omitempty"`
}

// Content prefers the translation when one exists
func (c Chapter) Content() string {
	return firstNonEmpty(c.TranslatedContent, c.RawContent)
}

// Favorite is a story saved by the current user
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Story     *Story    `json:"story"`
	CreatedAt *DateTime `json:"createdAt,omitempty"`
}

// FavoriteStatus reports whether the current user saved a story
type FavoriteStatus struct {
	IsFavorite    bool  `json:"isFavorite"`
	FavoriteCount int64 `json:"favoriteCount"`
}

// ReadingHistory is the current user's position in a story
type ReadingHistory struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	Story           *Story    `json:"story"`
	ChapterID       *int64    `json:"chapterId,omitempty"`
	ChapterTitle    string    `json:"chapterTitle,omitempty"`
	ProgressPercent int       `json:"progressPercent"`
	ScrollOffset    int       `json:"scrollOffset"`
	LastReadAt      *DateTime `json:"lastReadAt,omitempty"`
}

// UpdateHistoryRequest records reading progress
type UpdateHistoryRequest struct {
	StoryID         int64  `json:"storyId"`
	ChapterID       *int64 `json:"chapterId,omitempty"`
	ProgressPercent *int   `json:"progressPercent,omitempty"`
	ScrollOffset    *int   `json:"scrollOffset,omitempty"`
}

// Rating is one user's score for a story
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	StoryID   int64     `json:"storyId"`
	Rating    int       `json:"rating"`
	CreatedAt *DateTime `json:"createdAt,omitempty"`
	UpdatedAt *DateTime `json:"updatedAt,omitempty"`
}

// StoryRating is the aggregate score of a story
type StoryRating struct {
	StoryID       int64   `json:"storyId"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}

// RateStoryRequest creates or replaces the current user's rating
type RateStoryRequest struct {
	StoryID int64 `json:"storyId"`
	Rating  int   `json:"rating"`
}

// Comment is a reader comment on a story
type Comment struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	UserName      string    `json:"userName,omitempty"`
	UserAvatarURL string    `json:"userAvatarUrl,omitempty"`
	StoryID       int64     `json:"storyId"`
	Content       string    `json:"content"`
	CreatedAt     *DateTime `json:"createdAt,omitempty"`
	UpdatedAt     *DateTime `json:"updatedAt,omitempty"`
}

// CreateCommentRequest posts a comment
type CreateCommentRequest struct {
	StoryID int64  `json:"storyId"`
	Content string `json:"content"`
}

// LatestChapter is a recently updated chapter across all stories
type LatestChapter struct {
	ID                   int64     `json:"id"`
	StoryID              int64     `json:"storyId"`
	StoryTitle           string    `json:"storyTitle"`
	StoryTranslatedTitle string    `json:"storyTranslatedTitle,omitempty"`
	ChapterIndex         int       `json:"chapterIndex"`
	Title                string    `json:"title"`
	TranslatedTitle      string    `json:"translatedTitle,omitempty"`
	UpdatedAt            *DateTime `json:"updatedAt,omitempty"`
}

// DisplayStoryTitle prefers the translated story title
func (l LatestChapter) DisplayStoryTitle() string {
	return firstNonEmpty(l.StoryTranslatedTitle, l.StoryTitle)
}

// DisplayTitle prefers the translated chapter title
func (l LatestChapter) DisplayTitle() string {
	return firstNonEmpty(l.TranslatedTitle, l.Title)
}

// Recommendation is a set of suggested stories
type Recommendation struct {
	Stories     []Story `json:"stories"`
	Type        string  `json:"type,omitempty"`
	TotalCount  int     `json:"totalCount"`
	Explanation string  `json:"explanation,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
