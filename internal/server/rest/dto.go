package rest

import "github.com/dmitrijs2005/sessiongate/internal/server/models"

type signUpRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	AdminSecret string `json:"adminSecret"`
}

type signUpResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string             `json:"token"`
	User  models.AccountView `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
