package models

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestEvaluateTransition(t *testing.T) {
	legal := [][2]Status{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRefused},
		{StatusPending, StatusRefunded},
		{StatusApproved, StatusRefunded},
	}
	for _, edge := range legal {
		assert.Equal(t, TransitionLegal, EvaluateTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	for s := range ValidStatuses {
		assert.Equal(t, TransitionNoop, EvaluateTransition(s, s), "%s -> %s", s, s)
	}

	illegal := [][2]Status{
		{StatusApproved, StatusPending},
		{StatusApproved, StatusRefused},
		{StatusRefused, StatusPending},
		{StatusRefused, StatusApproved},
		{StatusRefused, StatusRefunded},
		{StatusRefunded, StatusPending},
		{StatusRefunded, StatusApproved},
		{StatusRefunded, StatusRefused},
	}
	for _, edge := range illegal {
		assert.Equal(t, TransitionIllegal, EvaluateTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for s := range ValidStatuses {
		if !s.IsTerminal() {
			continue
		}
		for to := range ValidStatuses {
			if to != s {
				assert.Equal(t, TransitionIllegal, EvaluateTransition(s, to))
			}
		}
	}
}

func TestTransactionExpiredAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tx := Transaction{Status: StatusPending, CreatedAt: now.Add(-70 * time.Minute)}

	assert.True(t, tx.ExpiredAt(now, time.Hour))
	assert.False(t, tx.ExpiredAt(now, 2*time.Hour))

	tx.Status = StatusApproved
	assert.False(t, tx.ExpiredAt(now, time.Hour))
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" Approved ")
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, s)

	_, ok = ParseStatus("settled")
	assert.False(t, ok)
}
