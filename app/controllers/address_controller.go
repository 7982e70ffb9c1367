package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

type addressRequest struct {
	Recipient  string `json:"recipient" validate:"required,max=150"`
	Street     string `json:"street" validate:"required,max=200"`
	Number     string `json:"number" validate:"required,max=20"`
	Complement string `json:"complement,omitempty" validate:"max=100"`
	District   string `json:"district" validate:"required,max=100"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,len=2"`
	ZipCode    string `json:"zipCode" validate:"required,min=8,max=9"`
	IsDefault  bool   `json:"isDefault,omitempty"`
}

// HandleListAddresses returns the user's addresses.
func HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := repository.GetGlobalFactory().GetAddressRepository().ListByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar os endereços")
	}
	return c.JSON(fiber.Map{"addresses": addresses})
}

// HandleCreateAddress adds a new shipping address.
func HandleCreateAddress(c *fiber.Ctx) error {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados do endereço inválidos")
	}

	repo := repository.GetGlobalFactory().GetAddressRepository()
	address := &models.Address{
		UserID:     usercontext.GetUserID(c),
		Recipient:  req.Recipient,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
	}
	if err := repo.Create(address); err != nil {
		return jsonInternalError(c, "Não foi possível salvar o endereço")
	}
	if req.IsDefault {
		if err := repo.SetDefault(address.ID, address.UserID); err != nil {
			return jsonInternalError(c, "Endereço salvo, mas não foi possível torná-lo padrão")
		}
		address.IsDefault = true
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleUpdateAddress replaces the fields of one of the user's addresses.
func HandleUpdateAddress(c *fiber.Ctx) error {
	id := parseUintParam(c, "id")
	if id == 0 {
		return jsonBadRequest(c, "Endereço inválido")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados do endereço inválidos")
	}

	repo := repository.GetGlobalFactory().GetAddressRepository()
	address, err := repo.GetByIDAndUser(id, usercontext.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Endereço não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o endereço")
	}

	address.Recipient = req.Recipient
	address.Street = req.Street
	address.Number = req.Number
	address.Complement = req.Complement
	address.District = req.District
	address.City = req.City
	address.State = req.State
	address.ZipCode = req.ZipCode
	if err := repo.Update(address); err != nil {
		return jsonInternalError(c, "Não foi possível atualizar o endereço")
	}
	if req.IsDefault && !address.IsDefault {
		if err := repo.SetDefault(address.ID, address.UserID); err != nil {
			return jsonInternalError(c, "Endereço atualizado, mas não foi possível torná-lo padrão")
		}
		address.IsDefault = true
	}
	return c.JSON(address)
}

// HandleDeleteAddress soft-deletes one of the user's addresses. Orders keep
// their own snapshot, so past purchases are unaffected.
func HandleDeleteAddress(c *fiber.Ctx) error {
	id := parseUintParam(c, "id")
	if id == 0 {
		return jsonBadRequest(c, "Endereço inválido")
	}
	repo := repository.GetGlobalFactory().GetAddressRepository()
	if err := repo.Delete(id, usercontext.GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Endereço não encontrado")
		}
		return jsonInternalError(c, "Não foi possível remover o endereço")
	}
	return c.JSON(fiber.Map{"ok": true})
}
