package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/plant-care/internal/auth"
	"github.com/i474232898/plant-care/internal/care"
)

type plantRequest struct {
	Name                string   `json:"name" validate:"required,max=120"`
	Species             string   `json:"species" validate:"max=120"`
	WaterEveryDays      *int     `json:"waterEveryDays" validate:"omitempty,min=0,max=365"`
	SunlightHoursPerDay *float64 `json:"sunlightHoursPerDay" validate:"omitempty,min=0,max=24"`
	LastWatered         string   `json:"lastWatered"`
	PhotoRef            string   `json:"photoRef"`
	DroughtTolerant     bool     `json:"droughtTolerant"`
}

func (r plantRequest) toInput() (care.PlantInput, error) {
	last, err := parseOptionalDate(r.LastWatered)
	if err != nil {
		return care.PlantInput{}, err
	}
	return care.PlantInput{
		Name:                r.Name,
		Species:             r.Species,
		WaterEveryDays:      r.WaterEveryDays,
		SunlightHoursPerDay: r.SunlightHoursPerDay,
		LastWatered:         last,
		PhotoRef:            r.PhotoRef,
		DroughtTolerant:     r.DroughtTolerant,
	}, nil
}

type waterRequest struct {
	Date            string   `json:"date"`
	SoilMoisturePct *float64 `json:"soilMoisturePct" validate:"omitempty,min=0,max=100"`
	Notes           string   `json:"notes" validate:"max=500"`
}

func (h *handler) listPlants(c *fiber.Ctx) error {
	plants, err := h.Care.ListPlants(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(plants)
}

func (h *handler) getPlant(c *fiber.Ctx) error {
	p, err := h.Care.GetPlant(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *handler) createPlant(c *fiber.Ctx) error {
	var req plantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}
	p, err := h.Care.CreatePlant(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *handler) updatePlant(c *fiber.Ctx) error {
	var req plantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}
	p, err := h.Care.UpdatePlant(c.UserContext(), auth.UserID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *handler) deletePlant(c *fiber.Ctx) error {
	if err := h.Care.DeletePlant(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) waterPlant(c *fiber.Ctx) error {
	var req waterRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return err
	}
	p, err := h.Care.WaterPlant(c.UserContext(), auth.UserID(c), c.Params("id"), care.WaterInput{
		Date:            date,
		SoilMoisturePct: req.SoilMoisturePct,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// plantAdvice accepts ?moisture=<pct>&droughtTolerant=<bool>, both optional.
func (h *handler) plantAdvice(c *fiber.Ctx) error {
	moisture, err := queryFloat(c, "moisture")
	if err != nil {
		return err
	}
	drought, err := queryBool(c, "droughtTolerant")
	if err != nil {
		return err
	}
	adv, err := h.Care.PlantAdvice(c.UserContext(), auth.UserID(c), c.Params("id"), moisture, drought)
	if err != nil {
		return err
	}
	return c.JSON(adv)
}

func (h *handler) plantTasks(c *fiber.Ctx) error {
	list, err := h.Tasks.TasksForPlant(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(list)
}
