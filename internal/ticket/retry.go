package ticket

// RetryWithFeedback runs attempt up to maxAttempts times. After a failed
// validation, the next attempt receives a correction message built from
// the invalid result. The zero feedback string is passed on the first
// attempt.
func RetryWithFeedback[T any](
	maxAttempts int,
	attempt func(feedback string) (T, error),
	validate func(T) error,
	feedbackFor func(T, error) string,
) (T, error) {
	var zero T
	var lastErr error
	feedback := ""

	for i := 0; i < maxAttempts; i++ {
		result, err := attempt(feedback)
		if err != nil {
			lastErr = err
			feedback = ""
			continue
		}

		if err := validate(result); err != nil {
			lastErr = err
			feedback = feedbackFor(result, err)
			continue
		}

		return result, nil
	}

	return zero, lastErr
}
