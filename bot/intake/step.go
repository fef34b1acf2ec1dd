package intake

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Step identifies a single question of the order intake conversation.
type Step int

const (
	// StepName asks for the order name.
	StepName Step = iota
	// StepLink asks for the 3D model link.
	StepLink
	// StepMaterial asks for the material name.
	StepMaterial
	// StepAmount asks for the material amount in grams.
	StepAmount
	// StepDate asks for the recommended completion date.
	StepDate
	// StepImportance asks for the importance from 1 to 10.
	StepImportance
	// StepSettings asks for free-form print settings.
	StepSettings
	// StepConfirm shows the summary and asks for confirmation.
	StepConfirm
	// StepPricing offers the recommended cost or a custom one.
	StepPricing
	// StepCustomPrice awaits a custom numeric price.
	StepCustomPrice
)

var stepNames = map[Step]string{
	StepName:        "name",
	StepLink:        "link",
	StepMaterial:    "material",
	StepAmount:      "material_amount",
	StepDate:        "recommended_date",
	StepImportance:  "importance",
	StepSettings:    "settings",
	StepConfirm:     "confirm",
	StepPricing:     "pricing",
	StepCustomPrice: "custom_price",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// dateLayout is the accepted recommended-date format.
const dateLayout = "2006-01-02"

// stepSpec describes a text-collecting step: its question, its validator
// (which stores the parsed value into the draft), and the step that follows.
// Steps driven by buttons (confirm, pricing) are dispatched separately.
type stepSpec struct {
	question func(d *Draft) string
	validate func(input string, d *Draft) error
	next     Step
}

// textSteps is the central transition table of the intake conversation.
var textSteps = map[Step]stepSpec{
	StepName: {
		question: func(*Draft) string { return "Enter the order name" },
		validate: func(input string, d *Draft) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return fmt.Errorf("the order name cannot be empty, please enter it again")
			}
			d.Name = input
			return nil
		},
		next: StepLink,
	},
	StepLink: {
		question: func(*Draft) string { return "Enter the link to the 3D model" },
		validate: func(input string, d *Draft) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return fmt.Errorf("the link cannot be empty, please enter it again")
			}
			d.FileLink = input
			return nil
		},
		next: StepMaterial,
	},
	StepMaterial: {
		question: func(*Draft) string { return "Enter the material name" },
		validate: func(input string, d *Draft) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return fmt.Errorf("the material name cannot be empty, please enter it again")
			}
			d.Material = input
			return nil
		},
		next: StepAmount,
	},
	StepAmount: {
		question: func(*Draft) string { return "Enter the amount of material in grams (a whole number)" },
		validate: func(input string, d *Draft) error {
			amount, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("the material amount must be a whole number greater than zero, please enter it again")
			}
			d.Amount = amount
			return nil
		},
		next: StepDate,
	},
	StepDate: {
		question: func(*Draft) string { return "Enter the completion date (YYYY-MM-DD)" },
		validate: func(input string, d *Draft) error {
			date, err := time.Parse(dateLayout, strings.TrimSpace(input))
			if err != nil {
				return fmt.Errorf("the date must be in YYYY-MM-DD format, please enter it again")
			}
			d.Date = date
			return nil
		},
		next: StepImportance,
	},
	StepImportance: {
		question: func(*Draft) string { return "Enter the order importance from 1 to 10 (a whole number)" },
		validate: func(input string, d *Draft) error {
			importance, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil {
				return fmt.Errorf("the importance must be a whole number, please enter it again")
			}
			if importance < 1 || importance > 10 {
				return fmt.Errorf("the importance must be between 1 and 10, please enter it again")
			}
			d.Importance = importance
			return nil
		},
		next: StepSettings,
	},
	StepSettings: {
		question: func(*Draft) string { return "Enter the required print settings" },
		validate: func(input string, d *Draft) error {
			// Any text is accepted here, including empty.
			d.Settings = input
			d.SettingsSet = true
			return nil
		},
		next: StepConfirm,
	},
}

// prevSteps maps every step to its predecessor; StepName has none.
var prevSteps = map[Step]Step{
	StepLink:        StepName,
	StepMaterial:    StepLink,
	StepAmount:      StepMaterial,
	StepDate:        StepAmount,
	StepImportance:  StepDate,
	StepSettings:    StepImportance,
	StepConfirm:     StepSettings,
	StepPricing:     StepConfirm,
	StepCustomPrice: StepPricing,
}
