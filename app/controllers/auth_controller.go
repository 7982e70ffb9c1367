package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/session"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
	"github.com/vitrinelabs/vitrine/internal/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	CPF      string `json:"cpf,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new user account and logs it in.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados de cadastro inválidos")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "E-mail já cadastrado")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonInternalError(c, "Não foi possível verificar o e-mail")
	}

	user, err := models.CreateUser(req.Name, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return jsonBadRequest(c, "Dados de cadastro inválidos")
	}
	user.CPF = req.CPF
	user.Phone = req.Phone

	if err := repo.Create(user); err != nil {
		return jsonInternalError(c, "Não foi possível criar a conta")
	}

	if err := startSession(c, user); err != nil {
		return jsonInternalError(c, "Conta criada, mas o login falhou")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin authenticates via email and password and starts a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "E-mail e senha são obrigatórios")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "E-mail ou senha incorretos")
		}
		return jsonInternalError(c, "Não foi possível fazer login")
	}
	if !user.IsActive() || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "E-mail ou senha incorretos")
	}

	if err := startSession(c, user); err != nil {
		return jsonInternalError(c, "Não foi possível iniciar a sessão")
	}
	_ = repo.TouchLastLogin(user.ID)

	return c.JSON(user)
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	if err := session.DestroySession(c); err != nil {
		return jsonInternalError(c, "Não foi possível encerrar a sessão")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleMe returns the authenticated user's account.
func HandleMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Usuário não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar a conta")
	}
	return c.JSON(fiber.Map{
		"user":      user,
		"avatarUrl": utils.GetGravatarURL(user.Email, 200),
	})
}

func startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	return sess.Save()
}
