package models

// TokenTypeBearer is the token_type echoed with every issued pair.
const TokenTypeBearer = "bearer"

// TokenResult is returned by login and refresh.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterRequest carries validated registration input.
type RegisterRequest struct {
	Email    string
	Username string
	Password string
	FullName *string
}
