package server

// Request bodies. Field rules beyond presence live in the services so they
// apply to every caller.

type registerRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// createPostRequest carries the text fields of the multipart form; the image
// is read separately.
type createPostRequest struct {
	Postname string `json:"postname" form:"postname" validate:"required,notblank"`
	Content  string `json:"content" form:"content" validate:"required,notblank"`
}

type reactionRequest struct {
	UserID flexID `json:"user_id" form:"user_id"`
}

type createCommentRequest struct {
	PostID  flexID `json:"post_id" form:"post_id" validate:"required"`
	UserID  flexID `json:"user_id" form:"user_id"`
	Comment string `json:"comment" form:"comment"`
}
