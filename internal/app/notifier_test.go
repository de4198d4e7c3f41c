package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/model"
)

func TestToasterQueuesSenderAndTitle(t *testing.T) {
	tr := NewToaster()

	require.NoError(t, tr.ShowToast(model.Notification{
		Kind:       model.KindMessage,
		Title:      "Verification update",
		SenderName: "Ava Chen",
	}))

	assert.Equal(t, []string{"Ava Chen · Verification update"}, tr.Drain())
}

func TestToasterSystemNoticesSkipSender(t *testing.T) {
	tr := NewToaster()

	require.NoError(t, tr.ShowToast(model.Notification{
		Kind:       model.KindSystem,
		Title:      "Connection lost",
		SenderName: "registry",
	}))
	require.NoError(t, tr.ShowToast(model.Notification{
		Kind:  model.KindReply,
		Title: "Re: schedule",
	}))

	assert.Equal(t, []string{"Connection lost", "Re: schedule"}, tr.Drain())
}

func TestToasterDrainClears(t *testing.T) {
	tr := NewToaster()

	require.NoError(t, tr.ShowToast(model.Notification{
		Kind:  model.KindSystem,
		Title: "Connection restored",
	}))

	assert.Len(t, tr.Drain(), 1)
	assert.Empty(t, tr.Drain())
}
