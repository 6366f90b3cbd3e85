package cmd

import (
	"fmt"

	"github.com/theirongolddev/goldplan/internal/model"

	"github.com/charmbracelet/huh"
)

// pickChild asks which plan to open.
func pickChild(plans model.PlanCollection) (string, error) {
	opts := make([]huh.Option[string], 0, len(plans))
	for _, id := range plans.IDs() {
		p := plans[id]
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, id), id))
	}

	var id string
	err := huh.NewSelect[string]().
		Title("Which child?").
		Options(opts...).
		Value(&id).
		Run()
	return id, err
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().Title(title).Value(&ok).Run()
	return ok, err
}
