package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telemarketing/internal/model"
	"telemarketing/internal/observability"
)

// CustomerRepository reads scored customers from customer_scores, one row
// per campaign target with drivers and attributes stored as jsonb, and writes
// generated guidance to customer_messages.
type CustomerRepository struct {
	DB *pgxpool.Pool
}

const customerColumns = `customer_id, campaign_id, proba, drivers, attributes`

func (r *CustomerRepository) Get(ctx context.Context, customerID string) (model.CustomerRecord, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customer_scores
		WHERE customer_id = $1
		ORDER BY scored_at DESC
		LIMIT 1
	`, customerID)

	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CustomerRecord{}, fmt.Errorf("%w: %s", model.ErrCustomerNotFound, customerID)
	}
	return c, err
}

func (r *CustomerRepository) ListCampaign(ctx context.Context, campaignID string) ([]model.CustomerRecord, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customer_scores
		WHERE campaign_id = $1
		ORDER BY customer_id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign %s: %w", campaignID, err)
	}
	defer rows.Close()

	var list []model.CustomerRecord
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaign %s: %w", campaignID, err)
	}
	return list, nil
}

func (r *CustomerRepository) SaveMessage(ctx context.Context, m model.GeneratedMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	features, err := json.Marshal(m.TopFeatures)
	if err != nil {
		return fmt.Errorf("marshal top features: %w", err)
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO customer_messages
		(id, request_id, customer_id, campaign_id, objective, channel, message, top_features, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.ID, m.RequestID, m.CustomerID, m.CampaignID, m.Objective, m.Channel, m.Message, features, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("save message for %s: %w", m.CustomerID, err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (model.CustomerRecord, error) {
	var (
		id, campaign         string
		proba                float64
		driversRaw, attrsRaw []byte
	)
	if err := row.Scan(&id, &campaign, &proba, &driversRaw, &attrsRaw); err != nil {
		return model.CustomerRecord{}, err
	}
	return decodeCustomer(id, campaign, proba, driversRaw, attrsRaw)
}

// decodeCustomer builds a record from raw column values. Malformed driver
// entries are dropped and counted; malformed attributes are an error.
func decodeCustomer(id, campaign string, proba float64, driversRaw, attrsRaw []byte) (model.CustomerRecord, error) {
	drivers, dropped, err := model.ParseDrivers(driversRaw)
	if err != nil {
		return model.CustomerRecord{}, fmt.Errorf("customer %s: %w", id, err)
	}
	if dropped > 0 {
		observability.DriversDropped.Add(float64(dropped))
	}

	var attrs map[string]any
	if len(attrsRaw) > 0 {
		if err := json.Unmarshal(attrsRaw, &attrs); err != nil {
			return model.CustomerRecord{}, fmt.Errorf("customer %s attributes: %w", id, err)
		}
	}

	return model.CustomerRecord{
		ID:                    id,
		CampaignID:            campaign,
		AcceptanceProbability: proba,
		Drivers:               drivers,
		Attributes:            attrs,
	}, nil
}
