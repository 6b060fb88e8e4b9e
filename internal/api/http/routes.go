package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/chineseneo/fuel-bot/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the daemon-mode read API over the history store.
func RegisterRoutes(app *fiber.App, history *store.History) {
	v1 := app.Group("/api/v1")

	v1.Get("/prices/today", func(c *fiber.Ctx) error {
		date, day, ok := history.Latest()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no price data recorded yet")
		}

		return c.JSON(fiber.Map{
			"date":   date,
			"prices": day,
		})
	})

	v1.Get("/prices/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		days := history.Range(req.From, req.To)
		if len(days) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no price history for requested range")
		}

		return c.JSON(fiber.Map{
			"from": req.From,
			"to":   req.To,
			"days": days,
		})
	})
}

// historyQuery holds query parameters for the history endpoint. Dates are
// ISO-8601 days, so lexical comparison is chronological.
type historyQuery struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.From = c.Query("from")
	h.To = c.Query("to")
	if h.From == "" || h.To == "" {
		return errors.New("from and to query parameters are required")
	}
	if h.From > h.To {
		return errors.New("from must not be after to")
	}
	return nil
}
