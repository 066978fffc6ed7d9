package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func fastPolicy() Policy {
	return Policy{InitialInterval: time.Millisecond, MaxElapsedTime: 200 * time.Millisecond}
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(fastPolicy(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("%w: restarting", model.ErrUnavailable)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_DomainErrorsAreFinal(t *testing.T) {
	calls := 0
	_, err := Do(fastPolicy(), func() (int, error) {
		calls++
		return 0, model.ErrAccountAlreadyExists
	})
	assert.ErrorIs(t, err, model.ErrAccountAlreadyExists)
	assert.Equal(t, 1, calls, "no retry for domain conflicts")
}

func TestDo_GivesUpAtTheCeiling(t *testing.T) {
	calls := 0
	_, err := Do(fastPolicy(), func() (int, error) {
		calls++
		return 0, model.ErrUnavailable
	})
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Greater(t, calls, 1, "transient failures are retried before surfacing")
}

func TestDo_FirstTrySuccess(t *testing.T) {
	got, err := Do(fastPolicy(), func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.False(t, errors.Is(err, model.ErrUnavailable))
}
