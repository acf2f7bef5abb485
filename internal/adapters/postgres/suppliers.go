package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
)

const supplierColumns = `
	id, organization_id, name, email, contact_name, contact_email, phone,
	country, business_id, sector, address, city, postal_code, categories,
	annual_spend, currency, status, data_quality, notes,
	created_at, updated_at, deleted_at`

func scanSupplier(row pgx.Row) (domain.Supplier, error) {
	var s domain.Supplier
	var categories []byte
	err := row.Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.Email, &s.ContactName, &s.ContactEmail, &s.Phone,
		&s.Country, &s.BusinessID, &s.Sector, &s.Address, &s.City, &s.PostalCode, &categories,
		&s.AnnualSpend, &s.Currency, &s.Status, &s.DataQuality, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	if err != nil {
		return domain.Supplier{}, err
	}
	unmarshalInto(categories, &s.Categories)
	return s, nil
}

func (db *DB) GetSupplier(ctx context.Context, id string) (domain.Supplier, error) {
	s, err := scanSupplier(db.Pool.QueryRow(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Supplier{}, ports.ErrNotFound
	}
	return s, err
}

func (db *DB) ListSuppliers(ctx context.Context, orgID string) ([]domain.Supplier, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, id
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO suppliers (
			id, organization_id, name, email, contact_name, contact_email, phone,
			country, business_id, sector, address, city, postal_code, categories,
			annual_spend, currency, status, data_quality, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		s.ID, s.OrganizationID, s.Name, s.Email, s.ContactName, s.ContactEmail, s.Phone,
		s.Country, s.BusinessID, s.Sector, s.Address, s.City, s.PostalCode, jsonbOrNil(s.Categories),
		s.AnnualSpend, s.Currency, s.Status, s.DataQuality, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	return s, err
}

func (db *DB) UpdateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE suppliers SET
			name=$2, email=$3, contact_name=$4, contact_email=$5, phone=$6,
			country=$7, business_id=$8, sector=$9, address=$10, city=$11,
			postal_code=$12, categories=$13, annual_spend=$14, currency=$15,
			status=$16, data_quality=$17, notes=$18, updated_at=$19
		WHERE id = $1 AND deleted_at IS NULL
	`,
		s.ID, s.Name, s.Email, s.ContactName, s.ContactEmail, s.Phone,
		s.Country, s.BusinessID, s.Sector, s.Address, s.City,
		s.PostalCode, jsonbOrNil(s.Categories), s.AnnualSpend, s.Currency,
		s.Status, s.DataQuality, s.Notes, s.UpdatedAt,
	)
	if err != nil {
		return domain.Supplier{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Supplier{}, ports.ErrNotFound
	}
	return s, nil
}

func (db *DB) SoftDeleteSupplier(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE suppliers SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}
