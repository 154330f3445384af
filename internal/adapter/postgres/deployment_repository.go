package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"slotdesk/internal/core/domain"
)

func (s *Store) CreateDeployment(ctx context.Context, d domain.Deployment) (int64, error) {
	const stmt = `
INSERT INTO deployments (commitment_id, banner_ref, deployed_at)
VALUES ($1,$2,$3)
RETURNING id`

	var id int64
	err := s.queryRow(ctx, stmt, d.CommitmentID, d.BannerRef, d.DeployedAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrAlreadyDeployed
		}
		return 0, fmt.Errorf("create deployment: %w", err)
	}
	return id, nil
}

func (s *Store) GetDeploymentByCommitment(ctx context.Context, commitmentID int64) (*domain.Deployment, error) {
	var d domain.Deployment
	err := s.queryRow(ctx,
		`SELECT id, commitment_id, banner_ref, deployed_at FROM deployments WHERE commitment_id = $1`,
		commitmentID,
	).Scan(&d.ID, &d.CommitmentID, &d.BannerRef, &d.DeployedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deployment: %w", err)
	}
	return &d, nil
}

func (s *Store) ListDeploymentsByWorkOrder(ctx context.Context, workOrderID int64) ([]domain.Deployment, error) {
	rows, err := s.query(ctx, `
SELECT d.id, d.commitment_id, d.banner_ref, d.deployed_at
FROM deployments d
JOIN commitments c ON c.id = d.commitment_id
WHERE c.work_order_id = $1
ORDER BY d.id`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Deployment, error) {
		var d domain.Deployment
		err := row.Scan(&d.ID, &d.CommitmentID, &d.BannerRef, &d.DeployedAt)
		return d, err
	})
}
