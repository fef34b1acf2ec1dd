package intake

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/bot/models"
)

// Draft accumulates validated intake fields. It only converts into an
// immutable models.Order once every required field has been collected;
// partially filled drafts never reach the stores.
type Draft struct {
	Name       string
	FileLink   string
	Material   string
	Amount     int64
	Date       time.Time
	Importance int
	Settings   string
	// SettingsSet distinguishes "settings collected as empty text" from
	// "settings step not reached yet".
	SettingsSet bool
}

// Complete reports whether every required field has been collected.
func (d *Draft) Complete() bool {
	return d.Name != "" &&
		d.FileLink != "" &&
		d.Material != "" &&
		d.Amount > 0 &&
		!d.Date.IsZero() &&
		d.Importance >= 1 && d.Importance <= 10 &&
		d.SettingsSet
}

// Order converts the draft into a pending order with the given cost.
// It fails when required fields are missing, which indicates a bug in the
// step machine rather than bad user input.
func (d *Draft) Order(cost decimal.Decimal) (models.Order, error) {
	if !d.Complete() {
		return models.Order{}, fmt.Errorf("intake: draft is incomplete")
	}
	return models.Order{
		Name:            d.Name,
		FileLink:        d.FileLink,
		MaterialName:    d.Material,
		MaterialAmount:  d.Amount,
		RecommendedDate: d.Date,
		Importance:      d.Importance,
		Settings:        d.Settings,
		Cost:            &cost,
		Status:          models.StatusPending,
	}, nil
}

// Summary renders the confirmation text shown before the order is committed.
func (d *Draft) Summary() string {
	return fmt.Sprintf(
		"Order name: %s\nModel link: %s\nMaterial: %s\nMaterial amount: %d g\nCompletion date: %s\nImportance: %d\nSettings: %s\n\nCreate the order with these details?",
		d.Name, d.FileLink, d.Material, d.Amount, d.Date.Format(dateLayout), d.Importance, d.Settings,
	)
}
