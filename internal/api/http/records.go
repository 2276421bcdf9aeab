package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/plant-care/internal/auth"
	"github.com/i474232898/plant-care/internal/care"
)

const maxLogLimit = 500

type logRequest struct {
	PlantID         string   `json:"plantId" validate:"required"`
	Date            string   `json:"date"`
	Action          string   `json:"action" validate:"required,oneof=WATER FERTILIZE SOIL_CHANGE"`
	SoilMoisturePct *float64 `json:"soilMoisturePct" validate:"omitempty,min=0,max=100"`
	FertilizerMl    *float64 `json:"fertilizerMl" validate:"omitempty,min=0"`
	Notes           string   `json:"notes" validate:"max=500"`
}

type supplyRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	RefillBelow int    `json:"refillBelow" validate:"min=0"`
}

type adjustRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type journalRequest struct {
	Content   string `json:"content" validate:"required,max=5000"`
	PhotoRef  string `json:"photoRef" validate:"max=500"`
	EntryDate string `json:"entryDate"`
}

// supplyView adds the derived stock status to the stored item.
type supplyView struct {
	care.SupplyItem
	Status care.SupplyStatus `json:"status"`
}

func viewSupply(item care.SupplyItem) supplyView {
	return supplyView{SupplyItem: item, Status: item.Status()}
}

func (h *handler) listLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > maxLogLimit {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 0 and 500")
	}
	logs, err := h.Care.ListLogs(c.UserContext(), auth.UserID(c), c.Query("plantId"), limit)
	if err != nil {
		return err
	}
	return c.JSON(logs)
}

func (h *handler) createLog(c *fiber.Ctx) error {
	var req logRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return err
	}
	entry, err := h.Care.AddLog(c.UserContext(), auth.UserID(c), care.LogInput{
		PlantID:         req.PlantID,
		Date:            date,
		Action:          care.TaskType(req.Action),
		SoilMoisturePct: req.SoilMoisturePct,
		FertilizerMl:    req.FertilizerMl,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handler) listJournal(c *fiber.Ctx) error {
	entries, err := h.Care.ListJournal(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// createJournalEntry accepts an RFC3339 entryDate; empty means now.
func (h *handler) createJournalEntry(c *fiber.Ctx) error {
	var req journalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := care.JournalInput{Content: req.Content, PhotoRef: req.PhotoRef}
	if req.EntryDate != "" {
		at, err := time.Parse(time.RFC3339, req.EntryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid entryDate; use RFC3339")
		}
		in.EntryDate = &at
	}
	entry, err := h.Care.AddJournalEntry(c.UserContext(), auth.UserID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handler) deleteJournalEntry(c *fiber.Ctx) error {
	if err := h.Care.DeleteJournalEntry(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) listSupplies(c *fiber.Ctx) error {
	items, err := h.Care.ListSupplies(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	out := make([]supplyView, 0, len(items))
	for _, item := range items {
		out = append(out, viewSupply(item))
	}
	return c.JSON(out)
}

func (h *handler) createSupply(c *fiber.Ctx) error {
	var req supplyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.Care.CreateSupply(c.UserContext(), auth.UserID(c), req.Name, req.Quantity, req.RefillBelow)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(viewSupply(item))
}

func (h *handler) adjustSupply(c *fiber.Ctx) error {
	var req adjustRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.Care.AdjustSupply(c.UserContext(), auth.UserID(c), c.Params("id"), req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(viewSupply(item))
}

func (h *handler) deleteSupply(c *fiber.Ctx) error {
	if err := h.Care.DeleteSupply(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
