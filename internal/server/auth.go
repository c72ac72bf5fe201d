package server

import (
	"net/http"
	"strings"
	"time"

	"dmadmin/internal"
	"dmadmin/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(internal.COOKIE_ID_TOKEN_NAME)
	if err == nil {
		s.logger.Debug("user is already logged in, redirecting home")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{BasePageData: types.BasePageData{Title: "Log in"}}
	if err := s.renderTemplate(w, r, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("form", "invalid_form"))
		return
	}

	login := new(LoginForm)
	if err := decoder.Decode(login, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode login form")
		s.internalServerError(w)
		return
	}
	login.Email = strings.TrimSpace(login.Email)

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": login.Email,
			"PASSWORD": login.Password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), input)
	if err != nil || resp.AuthenticationResult == nil || resp.AuthenticationResult.IdToken == nil {
		s.logger.WithError(err).WithField("email", login.Email).Info("login failed")

		data := &types.LoginPageData{
			BasePageData: types.BasePageData{Title: "Log in"},
			Email:        login.Email,
			Error:        "Make sure you've entered the right email address and password.",
		}
		if err := s.renderTemplateStatus(w, r, http.StatusUnauthorized, "page.login", data); err != nil {
			s.logger.WithError(err).Error("failed to render login page")
			s.internalServerError(w)
		}
		return
	}

	idToken := aws.ToString(resp.AuthenticationResult.IdToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ID_TOKEN_NAME, idToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt id token")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ID_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME)
	if err == nil {
		s.clearRedirectCookie(w)
		s.redirectLocal(w, r, redirectCookie.Value, "/")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ID_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.redirectToLogin(w, r)
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
