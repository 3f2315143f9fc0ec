// controllers/auth_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"onebooking-backend/middleware"
	"onebooking-backend/models"
	"onebooking-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges staff credentials for a 24h session token.
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if email == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "email and password required")
		return
	}

	var admin models.Admin
	if err := ac.DB.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("Login error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(payload.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	claims := jwt.MapClaims{
		"sub":  admin.Email,
		"role": admin.Role,
		"name": admin.FullName,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.JWTSecret())
	if err != nil {
		log.Printf("Token signing error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"admin": admin,
	})
}
