package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/plant-care/internal/auth"
)

func (h *handler) listTasks(c *fiber.Ctx) error {
	list, err := h.Tasks.NeedingAttention(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// upcomingTasks lists open tasks due tomorrow through next week.
func (h *handler) upcomingTasks(c *fiber.Ctx) error {
	list, err := h.Tasks.Upcoming(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *handler) taskNotifications(c *fiber.Ctx) error {
	n, err := h.Tasks.Notifications(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(n)
}

func (h *handler) syncTasks(c *fiber.Ctx) error {
	res, err := h.Tasks.Sync(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *handler) markDone(c *fiber.Ctx) error {
	t, err := h.Tasks.MarkDone(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *handler) markMissed(c *fiber.Ctx) error {
	t, err := h.Tasks.MarkMissed(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *handler) cancelTask(c *fiber.Ctx) error {
	t, err := h.Tasks.Cancel(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}
