package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"user-api/internal/domain"
	"user-api/internal/service"
)

// timeLayout es el formato de fechas del contrato de la API.
const timeLayout = "2006-01-02T15:04:05"

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

type phonePayload struct {
	Number      string `json:"number"`
	CityCode    string `json:"citycode"`
	CountryCode string `json:"contrycode"`
}

type registerRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required"`
	Password string         `json:"password" binding:"required"`
	Phones   []phonePayload `json:"phones"`
}

type userResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phones    []phonePayload `json:"phones"`
	Created   string         `json:"created"`
	Modified  string         `json:"modified"`
	LastLogin string         `json:"last_login"`
	Token     string         `json:"token"`
	IsActive  bool           `json:"isactive"`
}

type errorResponse struct {
	Mensaje string `json:"mensaje"`
}

// fieldMessages traduce errores de binding por campo; se agregan unidos
// por ", " en un solo mensaje.
var fieldMessages = map[string]string{
	"Name":     "El nombre es obligatorio",
	"Email":    "El correo es obligatorio",
	"Password": "La contraseña es obligatoria",
}

// RegisterUser maneja POST /api/users/register.
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Mensaje: bindingMessage(err)})
		return
	}

	user, err := h.userServ.RegisterUser(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phones:   toDomainPhones(req.Phones),
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, errorResponse{Mensaje: vErr.Message})
		case errors.Is(err, service.ErrEmailRegistered):
			c.JSON(http.StatusConflict, errorResponse{Mensaje: err.Error()})
		default:
			h.logger.Error("register user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorResponse{Mensaje: "Error interno del servidor"})
		}
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// bindingMessage agrega los mensajes de campos faltantes en un solo texto.
func bindingMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "Cuerpo de la peticion invalido"
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if msg, ok := fieldMessages[fe.Field()]; ok {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		return "Cuerpo de la peticion invalido"
	}
	return strings.Join(messages, ", ")
}

func toDomainPhones(payload []phonePayload) []domain.Phone {
	if payload == nil {
		return nil
	}
	phones := make([]domain.Phone, 0, len(payload))
	for _, p := range payload {
		phones = append(phones, domain.Phone{
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}
	return phones
}

func toUserResponse(user domain.User) userResponse {
	phones := make([]phonePayload, 0, len(user.Phones))
	for _, p := range user.Phones {
		phones = append(phones, phonePayload{
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phones:    phones,
		Created:   formatTime(user.Created),
		Modified:  formatTime(user.Modified),
		LastLogin: formatTime(user.LastLogin),
		Token:     user.Token,
		IsActive:  user.IsActive,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
