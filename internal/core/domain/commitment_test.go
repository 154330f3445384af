package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBannerFresh(t *testing.T) {
	uploaded := day(5)
	rejected := day(6)

	t.Run("no banner", func(t *testing.T) {
		assert.False(t, Commitment{}.BannerFresh(nil))
	})

	t.Run("ref without timestamp", func(t *testing.T) {
		assert.False(t, Commitment{BannerRef: "b/1.png"}.BannerFresh(nil))
	})

	t.Run("fresh when never rejected", func(t *testing.T) {
		c := Commitment{BannerRef: "b/1.png", BannerUploadedAt: &uploaded}
		assert.True(t, c.BannerFresh(nil))
	})

	t.Run("stale when uploaded before rejection", func(t *testing.T) {
		c := Commitment{BannerRef: "b/1.png", BannerUploadedAt: &uploaded}
		assert.False(t, c.BannerFresh(&rejected))
	})

	t.Run("uploaded at the rejection instant is stale", func(t *testing.T) {
		c := Commitment{BannerRef: "b/1.png", BannerUploadedAt: &rejected}
		assert.False(t, c.BannerFresh(&rejected))
	})

	t.Run("fresh after rejection", func(t *testing.T) {
		after := rejected.Add(time.Minute)
		c := Commitment{BannerRef: "b/2.png", BannerUploadedAt: &after}
		assert.True(t, c.BannerFresh(&rejected))
	})
}

func TestHasSlot(t *testing.T) {
	id := int64(7)
	assert.True(t, Commitment{SlotID: &id}.HasSlot())
	assert.False(t, Commitment{}.HasSlot())
}

func TestDeploymentEffectiveStatus(t *testing.T) {
	d := Deployment{DeployedAt: day(1)}
	end := day(10)

	assert.Equal(t, DeploymentLive, d.EffectiveStatus(end, day(5)))
	assert.Equal(t, DeploymentExpired, d.EffectiveStatus(end, day(10)))
	assert.Equal(t, DeploymentExpired, d.EffectiveStatus(end, day(11)))
}
