package handler

import (
	"time"

	"github.com/sirpyerre/useradmin/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createUserRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

// updateUserRequest leaves the stored password untouched when Password is
// omitted or empty.
type updateUserRequest struct {
	Username string  `json:"username" form:"username"`
	Email    string  `json:"email"    form:"email"`
	Password *string `json:"password" form:"password"`
}

// deleteUserRequest carries the anti-forgery token either as the _token form
// field or as a JSON body.
type deleteUserRequest struct {
	Token string `json:"token" form:"_token"`
}

type userLinks struct {
	Self        string `json:"self"`
	DeleteToken string `json:"delete_token"`
}

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Links     userLinks `json:"_links"`
}

type userResponse struct {
	User userView `json:"user"`
}

type listUsersResponse struct {
	Data  []userView `json:"data"`
	Total int        `json:"total"`
}

type deleteTokenResponse struct {
	Token     string `json:"token"`
	DeleteURL string `json:"delete_url"`
}

func toUserView(u *domain.User) userView {
	self := usersPath + "/" + u.ID
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Links: userLinks{
			Self:        self,
			DeleteToken: self + "/delete-token",
		},
	}
}
