package catalog

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetDisplayItem(ctx context.Context, id uint) (*DisplayItem, error)
	CreateDisplayItem(ctx context.Context, item *DisplayItem) error
	UpdateDisplayItem(ctx context.Context, item *DisplayItem) error
	DeleteDisplayItem(ctx context.Context, id uint) error
	ListDisplayItems(ctx context.Context, itemType *ItemType) ([]*DisplayItem, error)

	GetVariant(ctx context.Context, id string) (*ItemVariant, error)
	CreateVariant(ctx context.Context, v *ItemVariant) error
	UpdateVariant(ctx context.Context, v *ItemVariant) error
	// DeleteVariant removes the variant and reports whether the parent
	// display item has any variants left.
	DeleteVariant(ctx context.Context, id string) (remaining int, err error)
	ListShowcase(ctx context.Context, perType int) ([]*ItemVariant, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetDisplayItem(ctx context.Context, id uint) (*DisplayItem, error) {
	var d DisplayItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, type, name, created_at
		FROM display_items
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Type, &d.Name, &d.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *repository) CreateDisplayItem(ctx context.Context, item *DisplayItem) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO display_items (type, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, item.Type, item.Name).Scan(&item.ID, &item.CreatedAt)
}

func (r *repository) UpdateDisplayItem(ctx context.Context, item *DisplayItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE display_items
		SET type = $1, name = $2
		WHERE id = $3
	`, item.Type, item.Name, item.ID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrDisplayItemNotFound
	}
	return nil
}

func (r *repository) DeleteDisplayItem(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM display_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrDisplayItemNotFound
	}
	return nil
}

func (r *repository) ListDisplayItems(ctx context.Context, itemType *ItemType) ([]*DisplayItem, error) {
	query := `SELECT id, type, name, created_at FROM display_items`
	args := []any{}

	if itemType != nil {
		query += ` WHERE type = $1`
		args = append(args, *itemType)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DisplayItem
	for rows.Next() {
		var d DisplayItem
		if err := rows.Scan(&d.ID, &d.Type, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}

	return items, rows.Err()
}

func (r *repository) GetVariant(ctx context.Context, id string) (*ItemVariant, error) {
	var v ItemVariant
	err := r.db.QueryRowContext(ctx, `
		SELECT
			v.id, v.display_item_id, d.type, v.name, v.dimensions,
			v.price, v.description, v.fabric, v.color, v.wood_color,
			v.thumbnail, v.show_in_first_page, v.created_at
		FROM item_variants v
		JOIN display_items d ON d.id = v.display_item_id
		WHERE v.id = $1
	`, id).Scan(
		&v.ID, &v.DisplayItemID, &v.Type, &v.Name, &v.Dimensions,
		&v.Price, &v.Description, &v.Fabric, &v.Color, &v.WoodColor,
		&v.Thumbnail, &v.ShowInFirstPage, &v.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *repository) CreateVariant(ctx context.Context, v *ItemVariant) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO item_variants (
			id, display_item_id, name, dimensions, price, description,
			fabric, color, wood_color, thumbnail, show_in_first_page
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`,
		v.ID, v.DisplayItemID, v.Name, v.Dimensions, v.Price, v.Description,
		v.Fabric, v.Color, v.WoodColor, v.Thumbnail, v.ShowInFirstPage,
	).Scan(&v.CreatedAt)
}

func (r *repository) UpdateVariant(ctx context.Context, v *ItemVariant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE item_variants
		SET
			name = $1, dimensions = $2, price = $3, description = $4,
			fabric = $5, color = $6, wood_color = $7, show_in_first_page = $8
		WHERE id = $9
	`,
		v.Name, v.Dimensions, v.Price, v.Description,
		v.Fabric, v.Color, v.WoodColor, v.ShowInFirstPage, v.ID,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *repository) DeleteVariant(ctx context.Context, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var displayItemID uint
	err = tx.QueryRowContext(ctx, `
		SELECT display_item_id FROM item_variants WHERE id = $1
	`, id).Scan(&displayItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVariantNotFound
	}
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM item_variants WHERE id = $1`, id); err != nil {
		return 0, err
	}

	var remaining int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM item_variants WHERE display_item_id = $1
	`, displayItemID).Scan(&remaining)
	if err != nil {
		return 0, err
	}

	if remaining == 0 {
		if _, err = tx.ExecContext(ctx, `DELETE FROM display_items WHERE id = $1`, displayItemID); err != nil {
			return 0, err
		}
	}

	return remaining, tx.Commit()
}

func (r *repository) ListShowcase(ctx context.Context, perType int) ([]*ItemVariant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_item_id, type, name, dimensions, price, description,
			fabric, color, wood_color, thumbnail, show_in_first_page, created_at
		FROM (
			SELECT
				v.*, d.type,
				ROW_NUMBER() OVER (PARTITION BY d.type ORDER BY v.created_at DESC) AS rn
			FROM item_variants v
			JOIN display_items d ON d.id = v.display_item_id
			WHERE v.show_in_first_page
		) ranked
		WHERE rn <= $1
	`, perType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*ItemVariant
	for rows.Next() {
		var v ItemVariant
		if err := rows.Scan(
			&v.ID, &v.DisplayItemID, &v.Type, &v.Name, &v.Dimensions,
			&v.Price, &v.Description, &v.Fabric, &v.Color, &v.WoodColor,
			&v.Thumbnail, &v.ShowInFirstPage, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		variants = append(variants, &v)
	}

	return variants, rows.Err()
}
