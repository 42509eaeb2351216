package ticket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithFeedback_FirstAttemptValid(t *testing.T) {
	attempts := 0

	result, err := RetryWithFeedback(
		2,
		func(feedback string) (string, error) {
			attempts++
			assert.Empty(t, feedback)
			return "good", nil
		},
		func(s string) error { return nil },
		func(s string, err error) string { return "fix it" },
	)

	require.NoError(t, err)
	assert.Equal(t, "good", result)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithFeedback_SecondAttemptGetsFeedback(t *testing.T) {
	var feedbacks []string

	result, err := RetryWithFeedback(
		2,
		func(feedback string) (string, error) {
			feedbacks = append(feedbacks, feedback)
			if len(feedbacks) == 1 {
				return "bad", nil
			}
			return "good", nil
		},
		func(s string) error {
			if s == "bad" {
				return errors.New("invalid value")
			}
			return nil
		},
		func(s string, err error) string { return "you said " + s },
	)

	require.NoError(t, err)
	assert.Equal(t, "good", result)
	assert.Equal(t, []string{"", "you said bad"}, feedbacks)
}

func TestRetryWithFeedback_BudgetExhausted(t *testing.T) {
	attempts := 0
	validationErr := errors.New("still invalid")

	_, err := RetryWithFeedback(
		2,
		func(feedback string) (string, error) {
			attempts++
			return "bad", nil
		},
		func(s string) error { return validationErr },
		func(s string, err error) string { return "fix it" },
	)

	require.Error(t, err)
	assert.Equal(t, validationErr, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithFeedback_AttemptErrorCountsAgainstBudget(t *testing.T) {
	attempts := 0
	callErr := errors.New("backend down")

	_, err := RetryWithFeedback(
		2,
		func(feedback string) (string, error) {
			attempts++
			return "", callErr
		},
		func(s string) error { return nil },
		func(s string, err error) string { return "fix it" },
	)

	require.Error(t, err)
	assert.Equal(t, callErr, err)
	assert.Equal(t, 2, attempts)
}
