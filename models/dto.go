package models

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=30,username"`
	Password  string `json:"password" validate:"required,min=8,max=100,strongpassword"`
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50"`
	Bio       string `json:"bio" validate:"max=500"`
	Avatar    string `json:"avatar" validate:"omitempty,url"`
}

type CreateUserRequest struct {
	RegisterRequest
	Roles []string `json:"roles" validate:"omitempty,dive,oneof=user admin moderator"`
}

type UpdateUserRequest struct {
	Username  *string  `json:"username" validate:"omitempty,min=3,max=30,username"`
	FirstName *string  `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName  *string  `json:"last_name" validate:"omitempty,min=2,max=50"`
	Bio       *string  `json:"bio" validate:"omitempty,max=500"`
	Avatar    *string  `json:"avatar" validate:"omitempty,url"`
	Roles     []string `json:"roles" validate:"omitempty,dive,oneof=user admin moderator"`
	IsActive  *bool    `json:"is_active"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SessionUser struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
}

type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         SessionUser `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type CreatePostRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Slug          string   `json:"slug" validate:"omitempty,max=255"`
	Content       string   `json:"content" validate:"required,min=10"`
	Excerpt       string   `json:"excerpt" validate:"omitempty,max=500"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags          []string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	FeaturedImage string   `json:"featured_image" validate:"omitempty,url"`
}

type UpdatePostRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Content       *string  `json:"content" validate:"omitempty,min=10"`
	Excerpt       *string  `json:"excerpt" validate:"omitempty,max=500"`
	Status        *string  `json:"status" validate:"omitempty,oneof=draft published"`
	Tags          []string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	FeaturedImage *string  `json:"featured_image" validate:"omitempty,url"`
}

type PostListParams struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	Status    string `form:"status" validate:"omitempty,oneof=draft published"`
	Author    string `form:"author" validate:"omitempty,objectid"`
	Tag       string `form:"tag"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy,default=published_at"`
	SortOrder string `form:"sortOrder,default=desc" validate:"omitempty,oneof=asc desc"`
}

type SearchParams struct {
	Query  string   `form:"query"`
	Author string   `form:"author" validate:"omitempty,objectid"`
	Tags   []string `form:"tags"`
	Page   int      `form:"page,default=1"`
	Limit  int      `form:"limit,default=10"`
}

type CreateCommentRequest struct {
	Content         string   `json:"content" validate:"required,min=1,max=2000"`
	PostID          string   `json:"post_id" validate:"required,objectid"`
	ParentCommentID string   `json:"parent_comment_id" validate:"omitempty,objectid"`
	Mentions        []string `json:"mentions" validate:"omitempty,dive,objectid"`
}

type UpdateCommentRequest struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=2000"`
	Status  *string `json:"status" validate:"omitempty,oneof=pending approved rejected spam"`
}

type ModerateCommentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected spam"`
}

type CommentListParams struct {
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=20"`
	Status        string `form:"status,default=approved" validate:"omitempty,oneof=pending approved rejected spam"`
	Post          string `form:"post" validate:"omitempty,objectid"`
	Author        string `form:"author" validate:"omitempty,objectid"`
	ParentComment string `form:"parentComment" validate:"omitempty,objectid"`
	SortBy        string `form:"sortBy,default=createdAt" validate:"omitempty,oneof=createdAt likesCount"`
	SortOrder     string `form:"sortOrder,default=desc" validate:"omitempty,oneof=asc desc"`
}

type ToggleLikeRequest struct {
	TargetID   string `json:"target_id" validate:"required"`
	TargetType string `json:"target_type" validate:"required,oneof=post comment"`
}

type ToggleLikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type CheckMultipleLikesRequest struct {
	TargetIDs  []string `json:"target_ids" validate:"required,min=1,max=100"`
	TargetType string   `json:"target_type" validate:"required,oneof=post comment"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}
