package auth

import (
	"time"

	"golang.org/x/oauth2"
)

func tokenWithRefresh(accessToken, refreshToken string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
}
