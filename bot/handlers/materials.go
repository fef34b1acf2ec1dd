package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/binarybrigade/printbot/bot/storage"
	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/state"
)

const (
	stateMaterialAdd state.State = "material_add"
	stateMaterialUse state.State = "material_use"
)

func (h *Handlers) cmdMaterials(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	materials, err := h.inventory.List(ctx)
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		return tghelpers.SendText(c, "No materials in stock yet.")
	}
	lines := make([]string, 0, len(materials)+1)
	lines = append(lines, "All materials:")
	for _, m := range materials {
		lines = append(lines, fmt.Sprintf("%s: %d g", m.Name, m.Quantity))
	}
	return tghelpers.SendText(c, strings.Join(lines, "\n"))
}

func (h *Handlers) cbAddMaterial(c tele.Context) error {
	h.states.SetState(c.Sender().ID, stateMaterialAdd)
	return tghelpers.EditOrSendMD(c, "Enter the material and the amount to add, e.g. `PLA 500`", backMenuMarkup())
}

func (h *Handlers) cbUseMaterial(c tele.Context) error {
	h.states.SetState(c.Sender().ID, stateMaterialUse)
	return tghelpers.EditOrSendMD(c, "Enter the material and the amount to use, e.g. `PLA 120`", backMenuMarkup())
}

// stateMaterial parses "<name> <amount>" where the last token is the amount;
// the material name may contain spaces.
func (h *Handlers) stateMaterial(st state.State) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID
		fields := strings.Fields(c.Text())
		if len(fields) < 2 {
			return tghelpers.SendText(c, "Wrong format, expected: <material> <amount in grams>")
		}
		amount, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
		if err != nil || amount <= 0 {
			return tghelpers.SendText(c, "The amount must be a positive whole number of grams.")
		}
		name := strings.Join(fields[:len(fields)-1], " ")

		ctx, cancel := reqCtx(c)
		defer cancel()

		var quantity int64
		if st == stateMaterialAdd {
			quantity, err = h.inventory.Add(ctx, name, amount)
		} else {
			quantity, err = h.inventory.Subtract(ctx, name, amount)
		}
		if err != nil {
			var shortfall *storage.InsufficientStockError
			if errors.As(err, &shortfall) {
				return tghelpers.SendText(c, fmt.Sprintf(
					"Not enough %s: requested %d g, only %d g in stock.",
					shortfall.Material, shortfall.Requested, shortfall.Available,
				))
			}
			return err
		}

		h.states.ClearState(userID)
		return tghelpers.SendText(c,
			fmt.Sprintf("Done. %s now has %d g in stock.", name, quantity),
			&tele.SendOptions{ReplyMarkup: backMenuMarkup()},
		)
	}
}
