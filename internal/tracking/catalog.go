package tracking

import (
	"context"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/store"
)

type ErrorCategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ErrorCodeView struct {
	ID          uint   `json:"id"`
	CategoryID  uint   `json:"category_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *Engine) ListErrorCategories(ctx context.Context) ([]ErrorCategoryView, error) {
	var out []ErrorCategoryView
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		cats, err := tx.ActiveErrorCategories()
		if err != nil {
			return err
		}
		out = make([]ErrorCategoryView, 0, len(cats))
		for _, c := range cats {
			out = append(out, ErrorCategoryView{ID: c.ID, Name: c.Name})
		}
		return nil
	})
	return out, err
}

func (e *Engine) ListErrorCodes(ctx context.Context, categoryID uint) ([]ErrorCodeView, error) {
	if categoryID == 0 {
		return nil, apperror.New(apperror.Validation, "category id is required")
	}
	var out []ErrorCodeView
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		codes, err := tx.ActiveErrorCodes(categoryID)
		if err != nil {
			return err
		}
		out = make([]ErrorCodeView, 0, len(codes))
		for _, c := range codes {
			out = append(out, ErrorCodeView{
				ID:          c.ID,
				CategoryID:  c.CategoryID,
				Code:        c.Code,
				Description: c.Description,
			})
		}
		return nil
	})
	return out, err
}
