package api

import (
	"context"
	"fmt"
	"net/http"

	"edulite-cli/internal/edu"
)

// TokenPair is the response from the token obtain/refresh endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a JWT token pair. It goes through the
// client's transport but carries no bearer token, so a logged-out client can
// call it.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	req := map[string]string{"username": username, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/token/", nil, req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

type profileBody struct {
	ID                int    `json:"id"`
	Username          string `json:"username"`
	Bio               string `json:"bio"`
	Occupation        string `json:"occupation"`
	Country           string `json:"country"`
	PreferredLanguage string `json:"preferred_language"`
	FriendsCount      int    `json:"friends_count"`
}

func (b profileBody) model() edu.Profile {
	return edu.Profile{
		ID:                b.ID,
		Username:          b.Username,
		Bio:               b.Bio,
		Occupation:        b.Occupation,
		Country:           b.Country,
		PreferredLanguage: b.PreferredLanguage,
		FriendsCount:      b.FriendsCount,
	}
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*edu.Profile, error) {
	var body profileBody
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, nil, &body); err != nil {
		return nil, err
	}
	p := body.model()
	return &p, nil
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, in edu.ProfileInput) (*edu.Profile, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	req := map[string]string{
		"bio":                in.Bio,
		"occupation":         in.Occupation,
		"country":            in.Country,
		"preferred_language": in.PreferredLanguage,
	}
	var body profileBody
	if err := c.do(ctx, http.MethodPatch, "/users/me/", nil, req, &body); err != nil {
		return nil, err
	}
	p := body.model()
	return &p, nil
}
