package main

import (
	"context"
	"errors"
	oauthErrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"kondecoracao/common"
	"kondecoracao/schema"
	"net/http"
	"strings"
)

func (app *authSvc) routes(e *echo.Echo) {
	e.POST("/register", app.registerUser)
	e.GET("/oauth/token", app.token)
	e.POST("/oauth/token", app.token)
	e.GET("/verify", app.verify)
	e.POST("/verify", app.verify)
	e.GET("/session", app.session)
}

// registerUser is self-registration with e-mail and password
func (app *authSvc) registerUser(c echo.Context) error {
	var req RegisterRequest
	if err := common.ReadJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", "corpo da requisição inválido"))
	}

	u := User{Email: req.Email, Password: req.Password}
	u.normalizeEmail()
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", "informe um e-mail válido"))
	}
	if len(u.Password) < minPasswordLength {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", "a senha deve ter ao menos 6 caracteres"))
	}

	var existing int64
	if err := app.userDb.Model(&User{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
		app.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, nil)
	}
	if existing > 0 {
		return c.JSON(http.StatusConflict, common.FromKeysAndValues("error", "e-mail já cadastrado"))
	}

	if err := u.calculatePasswordHash(); err != nil {
		app.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, nil)
	}

	// unique index guards concurrent registrations with the same e-mail
	if err := app.userDb.Create(&u).Error; err != nil {
		app.logger.Errorf("Failed to create user %s: %s", u.Email, err)
		return c.JSON(http.StatusInternalServerError,
			common.FromKeysAndValues("error", "failed to create user"))
	}

	app.logger.Infof("Registered user %s", u.PublicId)
	app.notify(schema.EventUserCreated, u)
	return c.JSON(http.StatusOK, u)
}

// verify checks bearer token, used by other services
func (app *authSvc) verify(c echo.Context) error {
	tokenInfo, err := app.oauthServer.ValidationBearerToken(c.Request())
	if err != nil {
		app.logger.Infof("Token verification failed: %s", err)
		return c.String(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, Verification{PublicId: tokenInfo.GetUserID()})
}

// session returns owner of bearer token
func (app *authSvc) session(c echo.Context) error {
	tokenInfo, err := app.oauthServer.ValidationBearerToken(c.Request())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, common.FromKeysAndValues("error", "Não autenticado"))
	}

	var u User
	err = app.userDb.Where("public_id = ?", tokenInfo.GetUserID()).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusUnauthorized, common.FromKeysAndValues("error", "Não autenticado"))
	}
	if err != nil {
		app.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, nil)
	}
	return c.JSON(http.StatusOK, Session{PublicId: u.PublicId, Email: u.Email})
}

func (app *authSvc) token(c echo.Context) error {
	err := app.oauthServer.HandleTokenRequest(c.Response().Writer, c.Request())
	if err != nil {
		app.logger.Error(err)
	}
	return err
}

// checkPassword is the password grant handler, username is e-mail
func (app *authSvc) checkPassword(_ context.Context, _, username, password string) (string, error) {
	var u User
	err := app.userDb.Where("email = ?", strings.ToLower(strings.TrimSpace(username))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", oauthErrors.ErrInvalidGrant
	}
	if err != nil {
		return "", err
	}
	if !u.checkPassword(password) {
		return "", oauthErrors.ErrInvalidGrant
	}
	return u.PublicId, nil
}
