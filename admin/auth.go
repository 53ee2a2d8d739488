package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio/apperror"
	"portfolio/models"
)

const minPasswordLen = 8

func (a *AdminModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionUserKey) != nil {
		c.Redirect(http.StatusFound, "/admin/")
		return
	}

	c.HTML(http.StatusOK, "admin/login.html", gin.H{
		"Title": "Log in",
		"Next":  c.Query("next"),
	})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	var user models.AdminUser
	err := a.store.DB().WithContext(c.Request.Context()).Where("username = ?", username).First(&user).Error
	if err != nil || !checkPasswordHash(password, user.PasswordHash) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Error("load admin user", err)
		}
		a.log.Warn("admin login failed", zap.String("username", username), zap.String("ip", c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin/login.html", gin.H{
			"Title":    "Log in",
			"Error":    "Please enter the correct username and password.",
			"Username": username,
			"Next":     next,
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		a.fail(c, apperror.NewInternal("save session", err))
		return
	}
	a.log.Info("admin logged in", zap.String("username", user.Username))

	if !strings.HasPrefix(next, "/admin/") || strings.HasPrefix(next, "/admin/login") {
		next = "/admin/"
	}
	c.Redirect(http.StatusFound, next)
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/admin/login")
}

// CreateAdminUser creates username with password, or resets the password of
// an existing user.
func CreateAdminUser(db *gorm.DB, username, password string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "This field is required."
	}
	if len(password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLen)
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, apperror.NewInternal("hash password", err)
	}

	user := &models.AdminUser{Username: username, PasswordHash: hash}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(user).Error
	if err != nil {
		return nil, apperror.NewInternal("save admin user", err)
	}

	if err := db.Where("username = ?", username).First(user).Error; err != nil {
		return nil, apperror.NewInternal("reload admin user", err)
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
