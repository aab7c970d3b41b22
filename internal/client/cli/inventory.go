package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/client/services"
	"github.com/mtereshin/medtrack/internal/common"
)

// parseInventoryFilter maps a REPL argument to a list filter. An empty
// argument means the unfiltered list.
func parseInventoryFilter(arg string) (models.InventoryFilter, error) {
	switch models.InventoryFilter(arg) {
	case models.FilterAll, models.FilterLowStock, models.FilterExpired, models.FilterExpiringSoon:
		return models.InventoryFilter(arg), nil
	}
	return models.FilterAll, fmt.Errorf("unknown filter %q (low_stock, expired, expiring_soon)", arg)
}

// ListInventory prints the stock list, optionally filtered.
func (a *App) ListInventory(ctx context.Context, filterArg string) error {
	filter, err := parseInventoryFilter(filterArg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	items, err := a.inventory.List(ctx, filter)
	if err != nil {
		reportActionErr(err)
		return err
	}
	if len(items) == 0 {
		fmt.Println("No inventory records.")
		return nil
	}

	for _, it := range items {
		var flags []string
		if it.IsLowStock {
			flags = append(flags, "low")
		}
		if it.IsExpired {
			flags = append(flags, "expired")
		} else if it.IsExpiringSoon {
			flags = append(flags, "expiring")
		}
		note := ""
		if len(flags) > 0 {
			note = " [" + strings.Join(flags, ",") + "]"
		}
		fmt.Printf("#%-4d %-20s %d %s%s\n", it.ID, it.MedicineName, it.CurrentQuantity, it.Unit, note)
	}
	return nil
}

// AddInventory prompts for a new stock record.
func (a *App) AddInventory(ctx context.Context) error {
	draft, err := a.promptInventoryDraft(models.InventoryPayload{})
	if err != nil {
		return err
	}

	item, err := a.inventory.Create(ctx, *draft)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			fmt.Println("Not saved:", err)
		} else {
			reportActionErr(err)
		}
		return err
	}
	fmt.Printf("Inventory item #%d created.\n", item.ID)
	return nil
}

// EditInventory loads the item into a draft, prompts and saves.
func (a *App) EditInventory(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	item, err := a.inventory.Get(ctx, id)
	if err != nil {
		reportActionErr(err)
		return err
	}

	draft, err := a.promptInventoryDraft(services.DraftFromItem(item))
	if err != nil {
		return err
	}

	saved, err := a.inventory.Save(ctx, id, *draft)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			fmt.Println("Not saved:", err)
		} else {
			reportActionErr(err)
		}
		return err
	}
	fmt.Printf("Inventory item #%d saved.\n", saved.ID)
	return nil
}

// promptInventoryDraft collects the stock fields, keeping the passed-in
// values on empty answers.
func (a *App) promptInventoryDraft(draft models.InventoryPayload) (*models.InventoryPayload, error) {
	name, err := getSimpleText(a.reader, fmt.Sprintf("Medicine name [%s]", draft.MedicineName), os.Stdout)
	if err != nil {
		return nil, err
	}
	if name != "" {
		draft.MedicineName = name
	}

	mtype, err := getSimpleText(a.reader, fmt.Sprintf("Type (%s) [%s]", strings.Join(models.MedicineTypes, "/"), draft.MedicineType), os.Stdout)
	if err != nil {
		return nil, err
	}
	if mtype != "" {
		draft.MedicineType = strings.ToLower(mtype)
	}

	quantity, err := getSimpleText(a.reader, fmt.Sprintf("Quantity [%d]", draft.CurrentQuantity), os.Stdout)
	if err != nil {
		return nil, err
	}
	if quantity != "" {
		v, convErr := strconv.Atoi(quantity)
		if convErr != nil {
			fmt.Println("Quantity must be a number.")
			return nil, convErr
		}
		draft.CurrentQuantity = v
	}

	unit, err := getSimpleText(a.reader, fmt.Sprintf("Unit [%s]", draft.Unit), os.Stdout)
	if err != nil {
		return nil, err
	}
	if unit != "" {
		draft.Unit = unit
	}

	expiry, err := getSimpleText(a.reader, fmt.Sprintf("Expiry date (YYYY-MM-DD, optional) [%s]", draft.ExpiryDate), os.Stdout)
	if err != nil {
		return nil, err
	}
	if expiry != "" {
		draft.ExpiryDate = expiry
	}

	return &draft, nil
}

// DeleteInventory removes a stock record after confirmation.
func (a *App) DeleteInventory(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	ok, err := getConfirm(a.reader, "Delete this inventory item?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := a.inventory.Delete(ctx, id); err != nil {
		reportActionErr(err)
		return err
	}
	fmt.Printf("Inventory item #%d deleted.\n", id)
	return nil
}

// AdjustInventory changes the quantity by a signed delta.
func (a *App) AdjustInventory(ctx context.Context, arg, deltaArg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	delta, err := strconv.Atoi(deltaArg)
	if err != nil {
		fmt.Println("Delta must be a signed number, e.g. -2 or 10.")
		return err
	}

	reason, err := getSimpleText(a.reader, "Reason (optional)", os.Stdout)
	if err != nil {
		return err
	}

	item, err := a.inventory.Adjust(ctx, id, delta, reason)
	if err != nil {
		reportActionErr(err)
		return err
	}
	fmt.Printf("Adjusted. %s now at %d %s.\n", item.MedicineName, item.CurrentQuantity, item.Unit)
	return nil
}
