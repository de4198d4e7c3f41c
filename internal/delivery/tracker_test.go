package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/model"
)

func TestUpdateAdvancesForward(t *testing.T) {
	tr := NewTracker()

	require.True(t, tr.Update("m1", model.DeliverySending))
	require.True(t, tr.Update("m1", model.DeliverySent))
	require.True(t, tr.Update("m1", model.DeliveryDelivered))
	require.True(t, tr.Update("m1", model.DeliveryRead))

	got, ok := tr.Status("m1")
	require.True(t, ok)
	assert.Equal(t, model.DeliveryRead, got)
}

func TestUpdateNeverRegresses(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Update("m1", model.DeliveryRead))

	assert.False(t, tr.Update("m1", model.DeliveryDelivered))
	assert.False(t, tr.Update("m1", model.DeliverySending))

	got, _ := tr.Status("m1")
	assert.Equal(t, model.DeliveryRead, got)
}

func TestUpdateSameStatusIsIdempotent(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Update("m1", model.DeliveryDelivered))
	assert.True(t, tr.Update("m1", model.DeliveryDelivered))
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.Update("m1", model.DeliveryStatus("teleported")))
	_, ok := tr.Status("m1")
	assert.False(t, ok)
}

func TestStatusesReturnsCopy(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Update("m1", model.DeliverySent))

	m := tr.Statuses()
	m["m1"] = model.DeliverySending
	m["m2"] = model.DeliveryRead

	got, ok := tr.Status("m1")
	require.True(t, ok)
	assert.Equal(t, model.DeliverySent, got)
	_, ok = tr.Status("m2")
	assert.False(t, ok)
}

func TestForget(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Update("m1", model.DeliveryRead))

	tr.Forget("m1")
	_, ok := tr.Status("m1")
	assert.False(t, ok)

	// A forgotten message can start over from sending.
	assert.True(t, tr.Update("m1", model.DeliverySending))
}
