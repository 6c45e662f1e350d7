package api

import (
	"context"
	"errors"
	"net/http"
)

// User is the signed-in account as the backend reports it.
type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"fullName"`
	IsAdmin         bool   `json:"isAdmin"`
	MustSetPassword bool   `json:"mustSetPassword"`
}

// userReply accepts both a flat user and one wrapped in "user".
type userReply struct {
	User
	Wrapped *User `json:"user"`
}

func (r userReply) user() *User {
	if r.ID == 0 && r.Wrapped != nil {
		return r.Wrapped
	}
	u := r.User
	return &u
}

type cardLoginRequest struct {
	RawSwipe string  `json:"raw_swipe"`
	UTAID    *string `json:"uta_id"`
}

// CardLogin signs in with a raw card swipe.
func (c *Client) CardLogin(ctx context.Context, raw string) (*User, error) {
	var reply userReply
	if err := c.do(ctx, http.MethodPost, "/api/card/login/", cardLoginRequest{RawSwipe: raw}, &reply); err != nil {
		return nil, err
	}
	u := reply.user()
	if u.ID == 0 {
		return nil, &Error{Status: http.StatusOK, Message: "Invalid Card"}
	}
	return u, nil
}

type linkRequest struct {
	RawSwipe string `json:"raw_swipe"`
	UserID   int64  `json:"userId"`
}

// LinkCard binds a raw card swipe to a user account.
func (c *Client) LinkCard(ctx context.Context, userID int64, raw string) error {
	return c.do(ctx, http.MethodPost, "/api/card/link/", linkRequest{RawSwipe: raw, UserID: userID}, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var reply userReply
	if err := c.do(ctx, http.MethodPost, "/api/login/", loginRequest{email, password}, &reply); err != nil {
		return nil, err
	}
	return reply.user(), nil
}

// Registration is a new account request. CardString is an optional raw
// swipe captured during registration.
type Registration struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	CardString string `json:"cardString,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, r Registration) error {
	return c.do(ctx, http.MethodPost, "/api/register/", r, nil)
}

// Me returns the session user, or nil when nobody is signed in.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var reply userReply
	err := c.do(ctx, http.MethodGet, "/api/me/", nil, &reply)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := reply.user()
	if u.ID == 0 {
		return nil, nil
	}
	return u, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout/", nil, nil)
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

// SetPassword replaces the password of the session user.
func (c *Client) SetPassword(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/api/me/set-password/", setPasswordRequest{password}, nil)
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset asks the backend to mail a reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/password-reset/request/", resetRequest{email}, nil)
}
