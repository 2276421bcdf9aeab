package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/plant-care/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty,min=3,max=40"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	City     string `json:"city" validate:"max=80"`
	Country  string `json:"country" validate:"max=80"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type locationRequest struct {
	City    string `json:"city" validate:"max=80"`
	Country string `json:"country" validate:"max=80"`
}

func (h *handler) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.Auth.Register(c.UserContext(), auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		City:     req.City,
		Country:  req.Country,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tok, u, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": tok,
		"user":  u,
	})
}

func (h *handler) me(c *fiber.Ctx) error {
	u, err := h.Auth.Me(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *handler) updateLocation(c *fiber.Ctx) error {
	var req locationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.Auth.UpdateLocation(c.UserContext(), auth.UserID(c), req.City, req.Country)
	if err != nil {
		return err
	}
	return c.JSON(u)
}
