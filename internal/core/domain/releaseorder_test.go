package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionRelease(t *testing.T) {
	cases := []struct {
		name string
		from ReleaseOrderStatus
		to   ReleaseOrderStatus
		want bool
	}{
		{"manager approve", ReleasePendingManagerReview, ReleasePendingVPReview, true},
		{"manager return to client", ReleasePendingManagerReview, ReleasePendingBannerUpload, true},
		{"manager skips to pv", ReleasePendingManagerReview, ReleasePendingPVReview, false},
		{"manager skips to accepted", ReleasePendingManagerReview, ReleaseAccepted, false},
		{"resubmit", ReleasePendingBannerUpload, ReleasePendingManagerReview, true},
		{"banner upload cannot advance", ReleasePendingBannerUpload, ReleasePendingVPReview, false},
		{"vp approve", ReleasePendingVPReview, ReleasePendingPVReview, true},
		{"vp reject back", ReleasePendingVPReview, ReleasePendingManagerReview, true},
		{"pv approve", ReleasePendingPVReview, ReleaseAccepted, true},
		{"pv reject back", ReleasePendingPVReview, ReleasePendingVPReview, true},
		{"pv reject cannot skip back", ReleasePendingPVReview, ReleasePendingManagerReview, false},
		{"accepted to it", ReleaseAccepted, ReleaseReadyForIT, true},
		{"accepted to material", ReleaseAccepted, ReleaseReadyForMaterial, true},
		{"it to deployed", ReleaseReadyForIT, ReleaseDeployed, true},
		{"material to deployed", ReleaseReadyForMaterial, ReleaseDeployed, true},
		{"deployed is terminal", ReleaseDeployed, ReleaseReadyForIT, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransitionRelease(tc.from, tc.to))
		})
	}
}

func TestApproverFor(t *testing.T) {
	r, ok := ApproverFor(ReleasePendingManagerReview)
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)

	r, ok = ApproverFor(ReleasePendingVPReview)
	assert.True(t, ok)
	assert.Equal(t, RoleVP, r)

	r, ok = ApproverFor(ReleasePendingPVReview)
	assert.True(t, ok)
	assert.Equal(t, RolePV, r)

	_, ok = ApproverFor(ReleaseAccepted)
	assert.False(t, ok)
	_, ok = ApproverFor(ReleasePendingBannerUpload)
	assert.False(t, ok)
}

func TestNextOnApprove(t *testing.T) {
	next, ok := NextOnApprove(ReleasePendingManagerReview)
	assert.True(t, ok)
	assert.Equal(t, ReleasePendingVPReview, next)

	next, ok = NextOnApprove(ReleasePendingVPReview)
	assert.True(t, ok)
	assert.Equal(t, ReleasePendingPVReview, next)

	next, ok = NextOnApprove(ReleasePendingPVReview)
	assert.True(t, ok)
	assert.Equal(t, ReleaseAccepted, next)

	_, ok = NextOnApprove(ReleaseDeployed)
	assert.False(t, ok)
}

func TestPrevOnReject(t *testing.T) {
	prev, ok := PrevOnReject(ReleasePendingVPReview)
	assert.True(t, ok)
	assert.Equal(t, ReleasePendingManagerReview, prev)

	prev, ok = PrevOnReject(ReleasePendingPVReview)
	assert.True(t, ok)
	assert.Equal(t, ReleasePendingVPReview, prev)

	// Manager review has no earlier review stage; its fallback is the
	// return-to-client state, not a reject back-edge.
	_, ok = PrevOnReject(ReleasePendingManagerReview)
	assert.False(t, ok)
}

func TestDeployable(t *testing.T) {
	assert.True(t, ReleaseOrder{Status: ReleaseAccepted}.Deployable())
	assert.True(t, ReleaseOrder{Status: ReleaseReadyForIT}.Deployable())
	assert.True(t, ReleaseOrder{Status: ReleaseReadyForMaterial}.Deployable())
	assert.False(t, ReleaseOrder{Status: ReleasePendingManagerReview}.Deployable())
	assert.False(t, ReleaseOrder{Status: ReleaseDeployed}.Deployable())
}
