package domain

import "time"

type DeploymentStatus string

const (
	DeploymentLive    DeploymentStatus = "deployed"
	DeploymentExpired DeploymentStatus = "expired"
)

// Deployment records that a commitment's banner went live on its slot.
// Only deployed-at is stored; whether the deployment is still live is a
// pure function of the commitment window and the current time.
type Deployment struct {
	ID           int64
	CommitmentID int64
	BannerRef    string
	DeployedAt   time.Time
}

// EffectiveStatus derives the displayed status at read time. No background
// job flips rows to expired; recomputing here avoids staleness.
func (d Deployment) EffectiveStatus(commitmentEnd, now time.Time) DeploymentStatus {
	if now.Before(commitmentEnd) {
		return DeploymentLive
	}
	return DeploymentExpired
}
